package fortune

import (
	"errors"
	"testing"
	"time"
)

var testCatalogJSON = []byte(`{
	"cat1": [
		{"fortuneSummary": "大吉", "luckyStar": "钻石", "signText": "宜出行", "unsignText": "诸事顺"},
		{"fortuneSummary": "中吉", "luckyStar": "珍珠", "signText": "宜静养", "unsignText": "少远行"}
	],
	"cat2": [
		{"fortuneSummary": "小吉", "luckyStar": "琥珀", "signText": "宜交友", "unsignText": "忌争执"}
	]
}`)

func mustCatalog(t *testing.T, data []byte) *Catalog {
	t.Helper()
	catalog, err := ParseCatalog(data)
	if err != nil {
		t.Fatalf("ParseCatalog failed: %v", err)
	}
	return catalog
}

func TestSelectDeterministic(t *testing.T) {
	catalog := mustCatalog(t, testCatalogJSON)
	date := time.Date(2024, 1, 1, 12, 30, 0, 0, time.Local)

	seed := Seed("1001", date)
	if seed != "1001-2024-01-01" {
		t.Fatalf("unexpected seed: %s", seed)
	}

	first, err := Select(catalog, NewRand(seed))
	if err != nil {
		t.Fatalf("Select failed: %v", err)
	}
	second, err := Select(catalog, NewRand(seed))
	if err != nil {
		t.Fatalf("Select failed: %v", err)
	}

	if first != second {
		t.Errorf("same seed produced different entries: %+v vs %+v", first, second)
	}
}

func TestSelectVariesAcrossDates(t *testing.T) {
	catalog := mustCatalog(t, testCatalogJSON)

	base := time.Date(2024, 1, 1, 0, 0, 0, 0, time.Local)
	first, _ := Select(catalog, NewRand(Seed("1001", base)))

	// 同一用户换日期，30天内至少出现一次不同结果
	varied := false
	for i := 1; i <= 30; i++ {
		entry, err := Select(catalog, NewRand(Seed("1001", base.AddDate(0, 0, i))))
		if err != nil {
			t.Fatalf("Select failed: %v", err)
		}
		if entry != first {
			varied = true
			break
		}
	}
	if !varied {
		t.Error("selection never changed across 30 dates")
	}
}

func TestSelectSingleEntryCatalog(t *testing.T) {
	catalog := mustCatalog(t, []byte(`{"cat1":[{"fortuneSummary":"大吉","luckyStar":"钻石","signText":"宜","unsignText":"诸事顺"}]}`))

	for _, uid := range []string{"1001", "1002", "42"} {
		entry, err := Select(catalog, NewRand(Seed(uid, time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC))))
		if err != nil {
			t.Fatalf("Select failed for %s: %v", uid, err)
		}
		if entry.FortuneSummary != "大吉" || entry.LuckyStar != "钻石" {
			t.Errorf("uid %s: unexpected entry %+v", uid, entry)
		}
	}
}

func TestSelectAppliesFieldDefaults(t *testing.T) {
	catalog := mustCatalog(t, []byte(`{"cat1":[{"fortuneSummary":"大吉"}]}`))

	entry, err := Select(catalog, NewRand("x"))
	if err != nil {
		t.Fatalf("Select failed: %v", err)
	}

	if entry.FortuneSummary != "大吉" {
		t.Errorf("summary overwritten: %s", entry.FortuneSummary)
	}
	if entry.LuckyStar != DefaultLuckyStar {
		t.Errorf("expected default lucky star, got %s", entry.LuckyStar)
	}
	if entry.SignText != DefaultSignText {
		t.Errorf("expected default sign text, got %s", entry.SignText)
	}
	if entry.UnsignText != DefaultUnsignText {
		t.Errorf("expected default unsign text, got %s", entry.UnsignText)
	}
}

func TestSelectEmptyCatalog(t *testing.T) {
	catalog := mustCatalog(t, []byte(`{}`))
	if _, err := Select(catalog, NewRand("x")); !errors.Is(err, ErrEmptyCatalog) {
		t.Errorf("expected ErrEmptyCatalog, got %v", err)
	}

	// 空条目列表的分类在解析时丢弃
	catalog = mustCatalog(t, []byte(`{"cat1":[]}`))
	if _, err := Select(catalog, NewRand("x")); !errors.Is(err, ErrEmptyCatalog) {
		t.Errorf("expected ErrEmptyCatalog for all-empty categories, got %v", err)
	}
}

func TestParseCatalogInvalidJSON(t *testing.T) {
	if _, err := ParseCatalog([]byte(`not json`)); !errors.Is(err, ErrInvalidCatalog) {
		t.Errorf("expected ErrInvalidCatalog, got %v", err)
	}
}
