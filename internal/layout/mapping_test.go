package layout

import "testing"

func TestConvert(t *testing.T) {
	tests := []struct {
		in   string
		dir  Direction
		want string
	}{
		{"ghbdtn", EnToRu, "привет"},
		{"привет", RuToEn, "ghbdtn"},
		{"Ghbdtn", EnToRu, "Привет"},
		{"hjyxnmyuj", EnToRu, "рончтьнго"},
		{",.", RuToEn, "?/"},
		{",.", EnToRu, "бю"},
		{".", RuToEn, "/"},
		{".", EnToRu, "ю"},
		{"ghbdtn,", EnToRu, "приветб"},
		{"123 ", EnToRu, "123 "},
		{"@#$^&", EnToRu, "\"№;:?"},
	}

	for _, tt := range tests {
		t.Run(tt.in+"/"+tt.dir.String(), func(t *testing.T) {
			if got := Convert(tt.in, tt.dir); got != tt.want {
				t.Fatalf("Convert(%q) = %q, want %q", tt.in, got, tt.want)
			}
		})
	}
}

func TestConvertRoundTripLetters(t *testing.T) {
	in := "qwertyuiop[]asdfghjkl;'zxcvbnm,.`"
	if got := Convert(Convert(in, EnToRu), RuToEn); got != in {
		t.Fatalf("round trip = %q, want %q", got, in)
	}
}

func TestDirectionForText(t *testing.T) {
	if d, ok := DirectionForText("привет"); !ok || d != RuToEn {
		t.Fatalf("cyrillic: %v %v", d, ok)
	}
	if d, ok := DirectionForText("hello"); !ok || d != EnToRu {
		t.Fatalf("latin: %v %v", d, ok)
	}
	if _, ok := DirectionForText("ab вг"); ok {
		t.Fatal("tie must report false")
	}
	if _, ok := DirectionForText("123"); ok {
		t.Fatal("no letters must report false")
	}
	if got := ConvertAuto("."); got != "/" {
		t.Fatalf("ConvertAuto tie = %q, want RuToEn default", got)
	}
}

func TestTags(t *testing.T) {
	if TagFromHKL(0x04190419) != TagRu {
		t.Fatal("0x0419 should be Russian")
	}
	if TagFromHKL(0x04090409) != TagEn {
		t.Fatal("0x0409 should be English")
	}
	if TagFromHKL(0x08090809) != TagEn {
		t.Fatal("en-GB primary language is English")
	}
	if got := TagFromHKL(0x04070407); got.Kind != Other || got.LangID != 0x0407 {
		t.Fatalf("German = %+v", got)
	}
	if TagFromHKL(0) != TagUnknown {
		t.Fatal("null HKL must be unknown")
	}
	if TagRu.Flip() != TagEn || TagEn.Flip() != TagRu || TagUnknown.Flip() != TagUnknown {
		t.Fatal("Flip mismatch")
	}
}
