package grammar

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestParse(t *testing.T) {
	tests := []struct {
		filename string
		want     Parsed
	}{
		{"0.wish.md", Parsed{Ordinal: "0", Name: "wish", Version: Absent, Attempt: Absent, Ext: ".md"}},
		{"5.1.execution.v1.i2.md", Parsed{Ordinal: "5.1", Name: "execution", Version: 1, Attempt: 2, Ext: ".md"}},
		{"3.3.blueprint.v2.md", Parsed{Ordinal: "3.3", Name: "blueprint", Version: 2, Attempt: Absent, Ext: ".md"}},
		{"2.criteria.blackbox.i3.md", Parsed{Ordinal: "2", Name: "criteria.blackbox", Version: Absent, Attempt: 3, Ext: ".md"}},
		{"1.vision.md", Parsed{Ordinal: "1", Name: "vision", Version: Absent, Attempt: Absent, Ext: ".md"}},
		{"5.1.execution.v1.i1.src", Parsed{Ordinal: "5.1", Name: "execution", Version: 1, Attempt: 1, Ext: ".src"}},
		{"notes.md", Parsed{Name: "notes", Version: Absent, Attempt: Absent, Ext: ".md"}},
	}

	for _, tt := range tests {
		t.Run(tt.filename, func(t *testing.T) {
			assert.Equal(t, tt.want, Parse(tt.filename))
		})
	}
}

func TestRender(t *testing.T) {
	assert.Equal(t, "5.1.execution.v2.i1.md", Render("5.1.execution", 2, 1))
	assert.Equal(t, "0.wish.md", Render("0.wish", Absent, Absent))
	assert.Equal(t, "3.3.blueprint.v1.md", Render("3.3.blueprint", 1, Absent))
	assert.Equal(t, "x.i4.md", Render("x", Absent, 4))

	p := Parse("5.1.execution.v2.i1.md")
	assert.Equal(t, "5.1.execution.v2.i1.md", Render(p.Stem(), p.Version, p.Attempt))
}

func TestArtifactPattern(t *testing.T) {
	tests := []struct {
		name     string
		filename string
		want     bool
	}{
		{"wish", "0.wish.md", true},
		{"execution", "5.1.execution.v1.i1.md", true},
		{"criteria.blackbox", "2.criteria.blackbox.md", true},
		{"criteria.blackbox", "2.criteria.blueprint.md", false},
		{"criteria", "2.criteria.blackbox.md", true},
		{"wish", "0.wishlist.md", false},
		{"wish", "0.wish.src", false},
		{"wish", "wish.md", true},
		{"a+b", "1.a+b.md", true},
		{"a+b", "1.aab.md", false},
		{"exec.*", "5.1.execution.md", false},
	}

	for _, tt := range tests {
		t.Run(tt.name+"/"+tt.filename, func(t *testing.T) {
			assert.Equal(t, tt.want, ArtifactPattern(tt.name).MatchString(tt.filename))
		})
	}
}

func TestFeedbackName(t *testing.T) {
	assert.Equal(t, "0.wish.md.[feedback].v1.[given].by_human.md", FeedbackName("0.wish.md", 1))
	assert.Equal(t, "5.1.execution.v2.i1.md.[feedback].v12.[given].by_human.md", FeedbackName("5.1.execution.v2.i1.md", 12))
}

func TestFeedbackPattern(t *testing.T) {
	re := FeedbackPattern("0.wish.md")

	m := re.FindStringSubmatch("0.wish.md.[feedback].v7.[given].by_human.md")
	assert.Equal(t, []string{"0.wish.md.[feedback].v7.", "7"}, m)

	assert.False(t, re.MatchString("0Xwish.md.[feedback].v7.[given].by_human.md"), "dots are literal")
	assert.False(t, re.MatchString("1.vision.md.[feedback].v1.[given].by_human.md"))
}

func TestParseFeedback(t *testing.T) {
	against, version, ok := ParseFeedback("5.1.execution.v1.i1.md.[feedback].v3.[given].by_human.md")
	assert.True(t, ok)
	assert.Equal(t, "5.1.execution.v1.i1.md", against)
	assert.Equal(t, 3, version)

	_, _, ok = ParseFeedback("0.wish.md")
	assert.False(t, ok)

	assert.True(t, IsFeedback("0.wish.md.[feedback].v1.[given].by_human.md"))
	assert.False(t, IsFeedback("0.wish.md"))
}

func TestPattern_QuotesEveryLiteral(t *testing.T) {
	re := Pattern(`^%s-%s$`, "a.b", "(c)")
	assert.True(t, re.MatchString("a.b-(c)"))
	assert.False(t, re.MatchString("axb-c"))
}
