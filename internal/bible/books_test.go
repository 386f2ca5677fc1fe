package bible

import "testing"

func TestCanonicalBookName(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  string
	}{
		{"korean abbreviation", "마", "마태복음"},
		{"full korean name", "마태복음", "마태복음"},
		{"english name", "Matthew", "마태복음"},
		{"english name lowercase", "matthew", "마태복음"},
		{"english abbreviation", "matt", "마태복음"},
		{"english abbreviation uppercase", "MT", "마태복음"},
		{"numbered book english", "1 Corinthians", "고린도전서"},
		{"numbered abbreviation", "1cor", "고린도전서"},
		{"psalms alias", "ps", "시편"},
		{"unknown passes through cleaned", "바나나복음", "바나나복음"},
		{"empty", "", ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := CanonicalBookName(tt.input); got != tt.want {
				t.Errorf("CanonicalBookName(%q) = %q, want %q", tt.input, got, tt.want)
			}
		})
	}
}

func TestIsKnownBook(t *testing.T) {
	if !IsKnownBook("마태복음") {
		t.Error("마태복음 should be a known book")
	}
	if IsKnownBook("마") {
		t.Error("abbreviations are not canonical book names")
	}
	if IsKnownBook("바나나복음") {
		t.Error("unknown book reported as known")
	}
}

func TestAbbreviations(t *testing.T) {
	abbrevs := Abbreviations("야고보서")
	if len(abbrevs) == 0 || abbrevs[0] != "약" {
		t.Errorf("Abbreviations(야고보서) = %v, want [약]", abbrevs)
	}
	if got := Abbreviations("바나나복음"); got != nil {
		t.Errorf("Abbreviations of unknown book = %v, want nil", got)
	}
}

func TestEnglishName(t *testing.T) {
	if got := EnglishName("마태복음"); got != "Matthew" {
		t.Errorf("EnglishName(마태복음) = %q, want Matthew", got)
	}
	if got := EnglishName("바나나복음"); got != "" {
		t.Errorf("EnglishName of unknown book = %q, want empty", got)
	}
}

func TestBookTableComplete(t *testing.T) {
	if len(books) != 66 {
		t.Fatalf("book table has %d entries, want 66", len(books))
	}
	for _, b := range books {
		if b.Korean == "" || b.English == "" {
			t.Errorf("book entry %+v missing a name", b)
		}
		if len(b.KoreanAbbrevs) == 0 {
			t.Errorf("book %s has no Korean abbreviation", b.Korean)
		}
	}
}
