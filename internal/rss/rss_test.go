package rss

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/deusflow/newsdigest/internal/domain"
	"github.com/deusflow/newsdigest/internal/logger"
)

var fixedNow = time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)

func testSource(url string) domain.FeedSource {
	return domain.FeedSource{ID: "technology", URL: url, Category: "technology", Publisher: "News18"}
}

func rssDoc(items ...string) string {
	return `<?xml version="1.0" encoding="UTF-8"?><rss version="2.0"><channel><title>Feed</title>` +
		strings.Join(items, "\n") + `</channel></rss>`
}

func rssItem(n int) string {
	return fmt.Sprintf(`<item><title>Story number %d</title><link>https://example.com/story/%d</link>`+
		`<description>Description of story %d.</description>`+
		`<pubDate>Mon, 02 Jan 2006 %02d:04:05 GMT</pubDate></item>`, n, n, n, n)
}

func TestLooksLikeFeed_RejectsHTML(t *testing.T) {
	assert.False(t, LooksLikeFeed("<!doctype html><html><body><item>x</item></body></html>"))
	assert.False(t, LooksLikeFeed("<!DOCTYPE HTML><rss><item></item></rss>"))
}

func TestLooksLikeFeed_AcceptsMinimalRSS(t *testing.T) {
	assert.True(t, LooksLikeFeed("<rss><channel><item>...</item></channel></rss>"))
	assert.True(t, LooksLikeFeed(`<feed xmlns="http://www.w3.org/2005/Atom"><entry></entry></feed>`))
}

func TestLooksLikeFeed_RejectsGarbage(t *testing.T) {
	for _, in := range []string{"", "   \n", "plain text", "<rss><channel></channel></rss>", "<foo><item/></foo>"} {
		assert.False(t, LooksLikeFeed(in), in)
	}
}

func TestExtractField_PrefersDescriptionOverContentEncoded(t *testing.T) {
	frag := `<item><content:encoded><![CDATA[<p>Long body</p>]]></content:encoded>` +
		`<description>Short teaser</description></item>`
	a := NewAssembler(nil, func() time.Time { return fixedNow })

	assert.Equal(t, "Short teaser", a.first(frag, "description", "summary", "content", "content:encoded"))
}

func TestExtractField_Patterns(t *testing.T) {
	tests := []struct {
		name, frag, tag, want string
		ok                    bool
	}{
		{"cdata", `<title><![CDATA[Hello & bye]]></title>`, "title", "Hello & bye", true},
		{"attributes", `<title type="html">Typed</title>`, "title", "Typed", true},
		{"case insensitive", `<TITLE>Upper</TITLE>`, "title", "Upper", true},
		{"multiline", "<description>\nline one\nline two\n</description>", "description", "line one\nline two", true},
		{"namespaced", `<dc:creator>Jane Roe</dc:creator>`, "dc:creator", "Jane Roe", true},
		{"self-closing href", `<link rel="alternate" href="https://example.com/a"/>`, "link", "https://example.com/a", true},
		{"self-closing does not swallow", `<link href="https://example.com/b"/><title>x</title></link>`, "link", "https://example.com/b", true},
		{"blank", `<title>   </title>`, "title", "", false},
		{"missing", `<guid>abc</guid>`, "title", "", false},
		{"prefix is not a match", `<content:encoded>body</content:encoded>`, "content", "", false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := ExtractField(tt.frag, tt.tag)
			assert.Equal(t, tt.ok, ok)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestSplitItems_FallsBackToEntries(t *testing.T) {
	assert.Len(t, SplitItems(rssDoc(rssItem(1), rssItem(2))), 2)
	assert.Len(t, SplitItems(`<feed><entry><title>a</title></entry><entry><title>b</title></entry></feed>`), 2)
	assert.Empty(t, SplitItems(`<rss><items></items></rss>`))
}

func TestPrepareDocument(t *testing.T) {
	in := "<title>Fish & Chips &amp; more &#39;x&#39;</title>\r\n<x>\x01</x>\r"
	assert.Equal(t, "<title>Fish &amp; Chips &amp; more &#39;x&#39;</title>\n<x></x>", prepareDocument(in))
}

func TestAssemble_UnparseableDateUsesNow(t *testing.T) {
	a := NewAssembler(nil, func() time.Time { return fixedNow })
	frag := `<item><title>Some headline</title><link>https://example.com/a</link><pubDate>not-a-date</pubDate></item>`

	art, err := a.Assemble(frag, 0, testSource("https://www.news18.com/rss/tech.xml"))
	require.NoError(t, err)
	assert.Equal(t, fixedNow, art.PublishedAt)
	assert.False(t, art.PublishedAt.IsZero())
}

func TestAssemble_PlaceholderWhenNoImage(t *testing.T) {
	a := NewAssembler(nil, func() time.Time { return fixedNow })
	frag := `<item><title>Some headline</title><link>https://example.com/a</link><description>Text only</description></item>`

	art, err := a.Assemble(frag, 0, testSource("https://www.news18.com/rss/tech.xml"))
	require.NoError(t, err)
	assert.Equal(t, "/placeholder.svg?height=400&width=600&text=Technology+News", art.ImageURL)
	assert.Equal(t, PlaceholderImage("technology"), art.ImageURL)
}

func TestAssemble_Fallbacks(t *testing.T) {
	a := NewAssembler(nil, func() time.Time { return fixedNow })
	src := domain.FeedSource{ID: "cricket", URL: "https://www.news18.com/rss/cricket.xml", Category: "sports"}

	art, err := a.Assemble(`<item><guid isPermaLink="false">opaque-id-1234</guid></item>`, 4, src)
	require.NoError(t, err)
	assert.Equal(t, "Article 5", art.Title)
	assert.Equal(t, "https://www.news18.com/cricket", art.URL)
	assert.Equal(t, "Read more on News18", art.Description)
	assert.Equal(t, "News18", art.Author)
	assert.Equal(t, domain.Source{ID: "cricket", Name: "News18"}, art.Source)
	assert.Equal(t, "sports", art.Category)
	assert.Equal(t, art.Description, art.Content)
	assert.Equal(t, art.Description, art.FullContent)
	assert.Equal(t, domain.GenerateID(art.URL), art.ID)
}

func TestAssemble_CleansAndTruncates(t *testing.T) {
	a := NewAssembler(nil, func() time.Time { return fixedNow })
	long := strings.Repeat("word ", 200)
	frag := `<item><title><![CDATA[<b>Bold</b> move]]></title>` +
		`<link>https://example.com/a?x=1&amp;y=2</link>` +
		`<description><![CDATA[<p>` + long + `</p>]]></description>` +
		`<dc:creator>Reporter One</dc:creator></item>`

	art, err := a.Assemble(frag, 0, testSource("https://www.news18.com/rss/tech.xml"))
	require.NoError(t, err)
	assert.Equal(t, "Bold move", art.Title)
	assert.Equal(t, "https://example.com/a?x=1&y=2", art.URL)
	assert.Equal(t, "Reporter One", art.Author)
	assert.LessOrEqual(t, len([]rune(art.Description)), maxDescriptionLen)
	assert.NotContains(t, art.Description, "<p>")
}

func TestAssemble_ShortLinkRejected(t *testing.T) {
	a := NewAssembler(nil, func() time.Time { return fixedNow })
	_, err := a.Assemble(`<item><title>Headline</title><link>http://x</link></item>`, 0, testSource("https://n.com/r.xml"))
	assert.ErrorIs(t, err, ErrShortLink)
}

func TestAssemble_AtomEntry(t *testing.T) {
	a := NewAssembler(nil, func() time.Time { return fixedNow })
	frag := `<entry><title>Atom entry</title>` +
		`<link rel="self" href="https://example.com/self/1"/>` +
		`<link rel="alternate" href="https://example.com/posts/1"/>` +
		`<updated>2024-03-01T10:00:00Z</updated><summary>Entry summary</summary>` +
		`<author><name>Jane</name></author></entry>`

	art, err := a.Assemble(frag, 0, testSource("https://example.com/atom.xml"))
	require.NoError(t, err)
	assert.Equal(t, "https://example.com/posts/1", art.URL)
	assert.Equal(t, "Jane", art.Author)
	assert.Equal(t, "Entry summary", art.Description)
	assert.Equal(t, time.Date(2024, 3, 1, 10, 0, 0, 0, time.UTC), art.PublishedAt)
}

func TestAssemble_LinkOrder(t *testing.T) {
	a := NewAssembler(nil, func() time.Time { return fixedNow })
	src := testSource("https://example.com/feed.xml")

	tests := []struct {
		name string
		frag string
		want string
	}{
		{
			"link text beats alternate href",
			`<item><title>T</title><link rel="alternate" href="https://example.com/alt/1"/>` +
				`<link>https://example.com/text/1</link></item>`,
			"https://example.com/text/1",
		},
		{
			"guid url beats atom href",
			`<entry><title>T</title><guid>https://example.com/guid/1</guid>` +
				`<link rel="alternate" href="https://example.com/alt/1"/></entry>`,
			"https://example.com/guid/1",
		},
		{
			"alternate beats self",
			`<entry><title>T</title><link rel="self" href="https://example.com/self/1"/>` +
				`<link rel="alternate" href="https://example.com/alt/1"/></entry>`,
			"https://example.com/alt/1",
		},
		{
			"self href when nothing else",
			`<entry><title>T</title><link rel="self" href="https://example.com/self/1"/></entry>`,
			"https://example.com/self/1",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			art, err := a.Assemble(tt.frag, 0, src)
			require.NoError(t, err)
			assert.Equal(t, tt.want, art.URL)
		})
	}
}

func TestAssemble_DoubleEscapedTitle(t *testing.T) {
	a := NewAssembler(nil, func() time.Time { return fixedNow })
	docs, _ := a.ParseDocument(rssDoc(`<item><title>Modi&amp;#039;s visit &amp;amp; more</title>`+
		`<link>https://example.com/a/1</link></item>`), testSource("https://example.com/feed.xml"))

	require.Len(t, docs, 1)
	assert.Equal(t, "Modi's visit & more", docs[0].Title)
}

// prefixedRDF is well-formed RSS 1.0 whose items carry a namespace prefix,
// so the <item> pattern never matches.
const prefixedRDF = `<?xml version="1.0" encoding="UTF-8"?>
<rdf:RDF xmlns:rdf="http://www.w3.org/1999/02/22-rdf-syntax-ns#" xmlns="http://purl.org/rss/1.0/" xmlns:rss="http://purl.org/rss/1.0/">
<channel rdf:about="https://example.com/"><title>Prefixed</title><link>https://example.com/</link><description>Feed</description>
<items><rdf:Seq><rdf:li rdf:resource="https://example.com/rdf/1"/><rdf:li rdf:resource="https://example.com/rdf/2"/></rdf:Seq></items>
</channel>
<rss:item rdf:about="https://example.com/rdf/1"><rss:title>First prefixed story</rss:title>` +
	`<rss:link>https://example.com/rdf/1</rss:link><rss:description>Body of the &lt;b&gt;first&lt;/b&gt; story.</rss:description></rss:item>
<rss:item rdf:about="https://example.com/rdf/2"><rss:title>Second prefixed story</rss:title>` +
	`<rss:link>https://example.com/rdf/2</rss:link><rss:description>Body of the second story.</rss:description></rss:item>
</rdf:RDF>`

func TestParseDocument_FeedParserFallback(t *testing.T) {
	require.True(t, LooksLikeFeed(prefixedRDF))
	require.Empty(t, SplitItems(prepareDocument(prefixedRDF)))

	a := NewAssembler(nil, func() time.Time { return fixedNow })
	src := testSource("https://example.com/feed.xml")
	articles, skipped := a.ParseDocument(prefixedRDF, src)

	require.Len(t, articles, 2)
	assert.Zero(t, skipped)
	assert.Equal(t, "First prefixed story", articles[0].Title)
	assert.Equal(t, "https://example.com/rdf/1", articles[0].URL)
	assert.Equal(t, "Body of the first story.", articles[0].Description)
	assert.Equal(t, domain.GenerateID("https://example.com/rdf/1"), articles[0].ID)
	assert.Equal(t, PlaceholderImage("technology"), articles[0].ImageURL)
	assert.Equal(t, fixedNow, articles[0].PublishedAt)
	assert.Equal(t, "News18", articles[0].Author)
	assert.Equal(t, "Second prefixed story", articles[1].Title)
}

func TestParseDocument_FeedParserRejectsBrokenXML(t *testing.T) {
	a := NewAssembler(nil, func() time.Time { return fixedNow })
	articles, _ := a.ParseDocument(`<?xml version="1.0"?><rss><channel><items><rss:item>`, testSource("https://example.com/feed.xml"))
	assert.Empty(t, articles)
}

func TestExtractImage_Precedence(t *testing.T) {
	tests := []struct {
		name, frag, want string
	}{
		{
			"enclosure with image type",
			`<enclosure url="https://cdn.example.com/a.mp3" type="audio/mpeg"/><enclosure type="image/jpeg" url="https://cdn.example.com/e.jpg"/>`,
			"https://cdn.example.com/e.jpg",
		},
		{
			"media content before thumbnail",
			`<media:thumbnail url="https://cdn.example.com/t.png"/><media:content url="https://cdn.example.com/m.png" medium="image"/>`,
			"https://cdn.example.com/m.png",
		},
		{
			"inline img",
			`<description>x</description><img src="https://cdn.example.com/i.webp?w=600">`,
			"https://cdn.example.com/i.webp?w=600",
		},
		{
			"escaped img in description",
			`<description>&lt;img src=&quot;https://cdn.example.com/d.gif&quot;&gt; text</description>`,
			"https://cdn.example.com/d.gif",
		},
		{
			"bare url",
			`<description>see https://cdn.example.com/photos/b.jpeg now</description>`,
			"https://cdn.example.com/photos/b.jpeg",
		},
		{
			"invalid candidates fall through",
			`<media:content url="javascript:alert(1).jpg"/><media:thumbnail url="https://cdn.example.com/page.html"/>`,
			PlaceholderImage("world"),
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, ExtractImage("<item>"+tt.frag+"</item>", "world", defaultExtractor))
		})
	}
}

func TestIsValidImageURL(t *testing.T) {
	assert.True(t, IsValidImageURL("https://a.com/x.JPG"))
	assert.True(t, IsValidImageURL("http://a.com/x.png?size=large"))
	assert.False(t, IsValidImageURL("//a.com/x.png"))
	assert.False(t, IsValidImageURL("https://a.com/x.svg"))
	assert.False(t, IsValidImageURL("data:image/png;base64,xx.png"))
}

func TestPlaceholderImage_Default(t *testing.T) {
	assert.Equal(t, "/placeholder.svg?height=400&width=600&text=Explainer", PlaceholderImage("explainers"))
	assert.Equal(t, "/placeholder.svg?height=400&width=600&text=News+Article", PlaceholderImage("general"))
}

func newTestFetcher(timeout time.Duration) *Fetcher {
	return NewFetcher(
		WithTimeout(timeout),
		WithAssembler(NewAssembler(nil, func() time.Time { return fixedNow })),
		WithLogger(logger.Nop()),
	)
}

func TestFetch_OK(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Contains(t, r.Header.Get("Accept"), "application/rss+xml")
		assert.NotEmpty(t, r.Header.Get("User-Agent"))
		w.Header().Set("Content-Type", "application/rss+xml")
		fmt.Fprint(w, rssDoc(rssItem(1), rssItem(2), rssItem(3)))
	}))
	defer srv.Close()

	res := newTestFetcher(time.Second).Fetch(context.Background(), testSource(srv.URL))
	assert.Equal(t, OutcomeOK, res.Outcome)
	assert.Equal(t, "rss", res.Dialect)
	assert.Equal(t, http.StatusOK, res.StatusCode)
	require.Len(t, res.Articles, 3)
	assert.Equal(t, "Story number 1", res.Articles[0].Title)
}

func TestFetch_FeedParserFallback(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "application/rdf+xml")
		fmt.Fprint(w, prefixedRDF)
	}))
	defer srv.Close()

	res := newTestFetcher(time.Second).Fetch(context.Background(), testSource(srv.URL))
	assert.Equal(t, OutcomeOK, res.Outcome)
	assert.Equal(t, "rss", res.Dialect)
	assert.Len(t, res.Articles, 2)
}

func TestFetch_SkipsInvalidItems(t *testing.T) {
	bad := `<item><title>Too short</title><link>http://x</link></item>`
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		fmt.Fprint(w, rssDoc(rssItem(1), bad, rssItem(2)))
	}))
	defer srv.Close()

	res := newTestFetcher(time.Second).Fetch(context.Background(), testSource(srv.URL))
	assert.Equal(t, OutcomeOK, res.Outcome)
	assert.Len(t, res.Articles, 2)
	assert.Equal(t, 1, res.Skipped)
	for _, a := range res.Articles {
		assert.NotEqual(t, "http://x", a.URL)
	}
}

func TestFetch_FailureOutcomes(t *testing.T) {
	tests := []struct {
		name    string
		status  int
		body    string
		outcome Outcome
	}{
		{"html error page", http.StatusServiceUnavailable, "<!DOCTYPE html><html><body>down</body></html>", OutcomeBadStatus},
		{"html with 200", http.StatusOK, "<!DOCTYPE html><html><body>login</body></html>", OutcomeInvalidXML},
		{"empty body", http.StatusOK, "  ", OutcomeEmptyBody},
		{"no assemblable items", http.StatusOK, rssDoc(`<item><link>bad</link></item>`), OutcomeNoItems},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
				w.WriteHeader(tt.status)
				fmt.Fprint(w, tt.body)
			}))
			defer srv.Close()

			res := newTestFetcher(time.Second).Fetch(context.Background(), testSource(srv.URL))
			assert.Equal(t, tt.outcome, res.Outcome)
			assert.Empty(t, res.Articles)
		})
	}
}

func TestFetch_Timeout(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		select {
		case <-r.Context().Done():
		case <-time.After(2 * time.Second):
		}
	}))
	defer srv.Close()

	res := newTestFetcher(50*time.Millisecond).Fetch(context.Background(), testSource(srv.URL))
	assert.Equal(t, OutcomeTimeout, res.Outcome)
	assert.Empty(t, res.Articles)
	assert.Error(t, res.Err)
}

func TestFetch_TransportError(t *testing.T) {
	srv := httptest.NewServer(http.NotFoundHandler())
	url := srv.URL
	srv.Close()

	res := newTestFetcher(time.Second).Fetch(context.Background(), testSource(url))
	assert.Equal(t, OutcomeTransport, res.Outcome)
	assert.Empty(t, res.Articles)
}

func TestLoadSources_MissingFileUsesDefaults(t *testing.T) {
	sources, err := LoadSources(filepath.Join(t.TempDir(), "nope.yaml"))
	require.NoError(t, err)
	assert.Len(t, sources, 15)

	byID := map[string]domain.FeedSource{}
	for _, s := range sources {
		byID[s.ID] = s
	}
	assert.Equal(t, "sports", byID["cricket"].Category)
	assert.Equal(t, "entertainment", byID["movies"].Category)
	assert.Equal(t, "india", byID["india"].Category)
	assert.Equal(t, "News18", byID["india"].Publisher)
}

func TestLoadSources_YAML(t *testing.T) {
	path := filepath.Join(t.TempDir(), "feeds.yaml")
	yml := "publisher: Example Wire\nfeeds:\n  - id: cricket\n    url: https://example.com/cricket.xml\n  - id: world\n    url: https://example.com/world.xml\n    category: politics\n"
	require.NoError(t, os.WriteFile(path, []byte(yml), 0o600))

	sources, err := LoadSources(path)
	require.NoError(t, err)
	require.Len(t, sources, 2)
	assert.Equal(t, domain.FeedSource{ID: "cricket", URL: "https://example.com/cricket.xml", Category: "sports", Publisher: "Example Wire"}, sources[0])
	assert.Equal(t, "politics", sources[1].Category)
}

func TestLoadSources_RejectsIncompleteEntries(t *testing.T) {
	path := filepath.Join(t.TempDir(), "feeds.yaml")
	require.NoError(t, os.WriteFile(path, []byte("feeds:\n  - id: world\n"), 0o600))

	_, err := LoadSources(path)
	assert.Error(t, err)
}
