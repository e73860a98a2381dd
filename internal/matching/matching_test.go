package matching

import (
	"testing"
	"time"

	"github.com/google/uuid"
)

func TestRatio(t *testing.T) {
	tests := []struct {
		name string
		a, b string
		want float64
	}{
		{"identical", "外注費", "外注費", 1.0},
		{"both empty", "", "", 1.0},
		{"disjoint", "abc", "xyz", 0.0},
		{"partial", "abcd", "bcde", 0.75},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Ratio(tt.a, tt.b); got != tt.want {
				t.Errorf("Ratio(%q, %q) = %v, want %v", tt.a, tt.b, got, tt.want)
			}
		})
	}
}

func TestRatioSymmetric(t *testing.T) {
	a, b := "株式会社ABC商事", "ABC商事"
	if Ratio(a, b) != Ratio(b, a) {
		t.Errorf("Ratio not symmetric for %q / %q", a, b)
	}
}

func TestNormalize(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"ＡＢＣ商事", "abc商事"},
		{"ABC 商事", "abc商事"},
		{"　外注費　", "外注費"},
		{"Ａｍａｚｏｎ", "amazon"},
		{"ｱｲｳ", "アイウ"},
	}
	for _, tt := range tests {
		if got := Normalize(tt.in); got != tt.want {
			t.Errorf("Normalize(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func registry(names ...string) []Candidate {
	out := make([]Candidate, 0, len(names))
	for i, n := range names {
		out = append(out, Candidate{
			ID:   uuid.New(),
			Code: string(rune('A' + i)),
			Name: n,
		})
	}
	return out
}

func TestResolveExactName(t *testing.T) {
	snap := registry("外注費", "水道光熱費", "通信費")
	m, ok := Resolve("外注費", snap, 0.7)
	if !ok {
		t.Fatal("expected a match")
	}
	if m.Name != "外注費" || m.Confidence != 1.0 {
		t.Errorf("got %q conf=%v, want 外注費 conf=1.0", m.Name, m.Confidence)
	}
}

func TestResolveExactNameWidthInsensitive(t *testing.T) {
	snap := registry("ABC商事", "DEF物産")
	m, ok := Resolve("ＡＢＣ商事", snap, 0.7)
	if !ok {
		t.Fatal("expected a match")
	}
	if m.Name != "ABC商事" || m.Confidence != 1.0 {
		t.Errorf("got %q conf=%v, want ABC商事 conf=1.0", m.Name, m.Confidence)
	}
}

func TestResolveExactCode(t *testing.T) {
	snap := []Candidate{
		{ID: uuid.New(), Code: "5100", Name: "外注費"},
		{ID: uuid.New(), Code: "5200", Name: "通信費"},
	}
	m, ok := Resolve("5200", snap, 0.7)
	if !ok {
		t.Fatal("expected a match")
	}
	if m.Name != "通信費" || m.Confidence != 1.0 {
		t.Errorf("got %q conf=%v, want 通信費 conf=1.0", m.Name, m.Confidence)
	}
}

func TestResolveContainmentBonus(t *testing.T) {
	snap := registry("ABC商事")
	m, ok := Resolve("株式会社ABC商事", snap, 0.5)
	if !ok {
		t.Fatal("expected a match")
	}
	base := Ratio(Normalize("株式会社ABC商事"), Normalize("ABC商事"))
	want := base + containmentBonus
	if want > 1.0 {
		want = 1.0
	}
	if m.Confidence != want {
		t.Errorf("confidence = %v, want %v (base %v + bonus)", m.Confidence, want, base)
	}
}

func TestResolveBelowThreshold(t *testing.T) {
	snap := registry("外注費", "水道光熱費", "通信費", "旅費交通費")
	if m, ok := Resolve("フルーツみかみ", snap, 0.7); ok {
		t.Errorf("expected no match, got %q conf=%v", m.Name, m.Confidence)
	}
}

func TestResolveEmptyInputs(t *testing.T) {
	if _, ok := Resolve("", registry("外注費"), 0.7); ok {
		t.Error("empty input must not match")
	}
	if _, ok := Resolve("外注費", nil, 0.7); ok {
		t.Error("empty registry must not match")
	}
}

func TestResolveRecencyTieBreak(t *testing.T) {
	old := time.Date(2025, 1, 10, 0, 0, 0, 0, time.UTC)
	recent := time.Date(2025, 6, 1, 0, 0, 0, 0, time.UTC)
	snap := []Candidate{
		{ID: uuid.New(), Code: "V001", Name: "山田商店A", LastUsedAt: &old},
		{ID: uuid.New(), Code: "V002", Name: "山田商店B", LastUsedAt: &recent},
	}
	m, ok := Resolve("山田商店", snap, 0.5)
	if !ok {
		t.Fatal("expected a match")
	}
	if m.Code != "V002" {
		t.Errorf("tie should break toward most recently used, got %q", m.Code)
	}
}

func TestResolveDeterministic(t *testing.T) {
	snap := registry("外注費", "水道光熱費", "通信費", "消耗品費", "雑費")
	first, ok := Resolve("消耗品", snap, 0.6)
	if !ok {
		t.Fatal("expected a match")
	}
	for i := 0; i < 20; i++ {
		got, ok := Resolve("消耗品", snap, 0.6)
		if !ok || got != first {
			t.Fatalf("run %d: got %+v ok=%v, want stable %+v", i, got, ok, first)
		}
	}
}
