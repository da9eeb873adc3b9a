package catalog

import "testing"

func TestCategorize(t *testing.T) {
	cases := []struct {
		name string
		want Category
	}{
		{"M01_S02.foo.md", CategorySprint},
		{"M12_S99.some_sprint.md", CategorySprint},
		{"DOCREF_007.bar.md", CategoryDoc},
		{"CODEREF_baz.md", CategoryCode},
		{"OPINIONS_002.qux.md", CategoryOpinion},
		{"PLAN.md", CategoryCore},
		{"CURRENT.md", CategoryCore},
		// Fallback: anything unmatched is loose documentation.
		{"README.md", CategoryDoc},
		{"DOCREF_07.short_seq.md", CategoryDoc},
		{"M1_S2.bad_width.md", CategoryDoc},
		{"OPINIONS_002.md", CategoryDoc},
	}
	for _, c := range cases {
		if got := Categorize(c.name); got != c.want {
			t.Errorf("Categorize(%q) = %q, want %q", c.name, got, c.want)
		}
	}
}

func TestValidFilter(t *testing.T) {
	for _, c := range []Category{CategoryAll, CategorySprint, CategoryDoc, CategoryCode, CategoryOpinion} {
		if !ValidFilter(c) {
			t.Errorf("ValidFilter(%q) = false", c)
		}
	}
	for _, c := range []Category{CategoryCore, Category("bogus"), Category("")} {
		if ValidFilter(c) {
			t.Errorf("ValidFilter(%q) = true", c)
		}
	}
}

func TestRecordable(t *testing.T) {
	for _, c := range []Category{CategoryDoc, CategoryCode, CategoryOpinion} {
		if !Recordable(c) {
			t.Errorf("Recordable(%q) = false", c)
		}
	}
	for _, c := range []Category{CategorySprint, CategoryCore, CategoryAll} {
		if Recordable(c) {
			t.Errorf("Recordable(%q) = true", c)
		}
	}
}

func TestRankOrdering(t *testing.T) {
	order := []Category{CategorySprint, CategoryDoc, CategoryCode, CategoryOpinion, CategoryAll, CategoryCore}
	for i := 1; i < len(order); i++ {
		if rank(order[i-1]) > rank(order[i]) {
			t.Errorf("rank(%q) > rank(%q)", order[i-1], order[i])
		}
	}
}
