package preview

import (
	"context"
	"errors"
	"io"
	"strings"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/PuerkitoBio/goquery"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/ternarybob/arbor"
	"github.com/ternarybob/tagview/internal/interfaces"
	"github.com/ternarybob/tagview/internal/models"
	"github.com/ternarybob/tagview/internal/services/events"
)

type fakeSource struct {
	mu     sync.Mutex
	files  map[string]string
	opens  map[string]int
	gate   chan struct{}
	failOn map[string]bool
}

func newFakeSource(files map[string]string) *fakeSource {
	return &fakeSource{files: files, opens: map[string]int{}, failOn: map[string]bool{}}
}

func (f *fakeSource) Open(ctx context.Context, path string) (io.ReadCloser, int64, error) {
	if f.gate != nil {
		<-f.gate
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	f.opens[path]++
	if f.failOn[path] {
		return nil, 0, errors.New("connection reset")
	}
	body, ok := f.files[path]
	if !ok {
		return nil, 0, interfaces.ErrContentNotFound
	}
	return io.NopCloser(strings.NewReader(body)), int64(len(body)), nil
}

func (f *fakeSource) Root() string { return "fake" }

func (f *fakeSource) openCount(path string) int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.opens[path]
}

type recordingFetcher struct {
	requested []string
}

func (r *recordingFetcher) Request(ctx context.Context, path string) {
	r.requested = append(r.requested, path)
}

func TestEscapeHTML(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"plain", "plain"},
		{"a & b", "a &amp; b"},
		{"<script>", "&lt;script&gt;"},
		{`say "hi"`, "say &quot;hi&quot;"},
		{"it's", "it&#039;s"},
		{"&amp;", "&amp;amp;"},
		{`<a href='x' title="y">&</a>`, "&lt;a href=&#039;x&#039; title=&quot;y&quot;&gt;&amp;&lt;/a&gt;"},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got := EscapeHTML(tt.in)
			assert.Equal(t, tt.want, got)
			for _, ch := range []string{"<", ">", `"`, "'"} {
				assert.NotContains(t, got, ch)
			}
		})
	}
}

func TestColorHex(t *testing.T) {
	assert.Equal(t, "#0000ff", ColorHex("blue"))
	assert.Equal(t, "#0000ff", ColorHex(" Blue "))
	assert.Equal(t, "#a52a2a", ColorHex("brown"))
	assert.Equal(t, FallbackColorHex, ColorHex("unknown"))
	assert.Equal(t, FallbackColorHex, ColorHex("teal"))
	assert.Equal(t, FallbackColorHex, ColorHex(""))
}

func TestProjector_Project(t *testing.T) {
	cache := NewTextBodyCache()
	cache.Set("loaded.txt", "hello world")
	fetcher := &recordingFetcher{}
	projector := NewProjector(cache, fetcher)

	image := projector.Project(&models.FileRecord{
		Path: "b.png", Type: models.FileTypeImage, Color: "blue",
		Tags:       []models.TagEntry{{Tag: "dog", Confidence: models.Confidence{Value: "90%"}}},
		Dimensions: "640x480",
	})
	assert.Equal(t, "#0000ff", image.ColorHex)
	assert.Equal(t, "blue", image.ColorName)
	assert.Equal(t, "640x480", image.Dimensions)
	require.Len(t, image.Tags, 1)
	assert.Equal(t, "90%", image.Tags[0].Confidence.String())

	oddColor := projector.Project(&models.FileRecord{Path: "c.png", Type: models.FileTypeImage, Color: "unknown"})
	assert.Equal(t, FallbackColorHex, oddColor.ColorHex)

	withThumb := projector.Project(&models.FileRecord{Path: "chair/chair.glb", Type: models.FileTypeModel3D, Thumbnail: "chair/thumbnail.png"})
	assert.Equal(t, "chair/thumbnail.png", withThumb.Thumbnail)
	assert.False(t, withThumb.Placeholder)

	noThumb := projector.Project(&models.FileRecord{Path: "lamp.glb", Type: models.FileTypeModel3D})
	assert.True(t, noThumb.Placeholder)
	assert.Empty(t, noThumb.ColorHex)

	loaded := projector.Project(&models.FileRecord{Path: "loaded.txt", Type: models.FileTypeText})
	assert.Equal(t, "hello world", loaded.Body)
	assert.False(t, loaded.BodyPending)

	pending := projector.Project(&models.FileRecord{Path: "pending.txt", Type: models.FileTypeText})
	assert.Equal(t, BodyPending, pending.Body)
	assert.True(t, pending.BodyPending)

	assert.Equal(t, []string{"pending.txt"}, fetcher.requested)
}

func TestProjector_TagsAreCopied(t *testing.T) {
	record := &models.FileRecord{Path: "x.png", Type: models.FileTypeImage, Tags: []models.TagEntry{{Tag: "one"}, {Tag: "two"}}}
	desc := NewProjector(NewTextBodyCache(), nil).Project(record)

	desc.Tags[0].Tag = "changed"
	assert.Equal(t, "one", record.Tags[0].Tag)
	assert.Equal(t, "two", desc.Tags[1].Tag)
}

func TestTextFetcher_LoadsAndAnnounces(t *testing.T) {
	logger := arbor.NewLogger()
	eventService := events.NewService(logger)
	defer eventService.Close()

	var mu sync.Mutex
	announced := map[string]bool{}
	delivered := make(chan struct{}, 4)
	_, err := eventService.Subscribe(interfaces.EventTextBodyLoaded, func(ctx context.Context, event interfaces.Event) error {
		payload := event.Payload.(interfaces.TextBodyLoadedPayload)
		mu.Lock()
		announced[payload.Path] = payload.Failed
		mu.Unlock()
		delivered <- struct{}{}
		return nil
	})
	require.NoError(t, err)

	source := newFakeSource(map[string]string{"a.txt": "alpha"})
	source.failOn["broken.txt"] = true
	cache := NewTextBodyCache()
	fetcher := NewTextFetcher(source, cache, eventService, logger, time.Second)

	corpus := models.NewTagCorpus(
		&models.FileRecord{Path: "a.txt", Type: models.FileTypeText},
		&models.FileRecord{Path: "img.png", Type: models.FileTypeImage},
		&models.FileRecord{Path: "broken.txt", Type: models.FileTypeText},
		&models.FileRecord{Path: "missing.txt", Type: models.FileTypeText},
	)
	assert.Equal(t, 3, fetcher.PrefetchAll(context.Background(), corpus))
	fetcher.Wait()

	body, ok := cache.Get("a.txt")
	require.True(t, ok)
	assert.Equal(t, "alpha", body)

	for _, path := range []string{"broken.txt", "missing.txt"} {
		body, ok := cache.Get(path)
		require.True(t, ok, path)
		assert.Equal(t, TextFetchFailedMessage, body)
	}
	_, ok = cache.Get("img.png")
	assert.False(t, ok)

	for i := 0; i < 3; i++ {
		select {
		case <-delivered:
		case <-time.After(2 * time.Second):
			t.Fatal("timed out waiting for text body events")
		}
	}
	mu.Lock()
	assert.Equal(t, map[string]bool{"a.txt": false, "broken.txt": true, "missing.txt": true}, announced)
	mu.Unlock()

	// Failures are cached, so asking again does not refetch
	fetcher.Request(context.Background(), "broken.txt")
	fetcher.Wait()
	assert.Equal(t, 1, source.openCount("broken.txt"))
}

func TestTextFetcher_DeduplicatesInFlight(t *testing.T) {
	source := newFakeSource(map[string]string{"slow.txt": "eventually"})
	source.gate = make(chan struct{})
	cache := NewTextBodyCache()
	fetcher := NewTextFetcher(source, cache, nil, arbor.NewLogger(), 0)

	var calls atomic.Int32
	for i := 0; i < 5; i++ {
		fetcher.Request(context.Background(), "slow.txt")
		calls.Add(1)
	}
	close(source.gate)
	fetcher.Wait()

	assert.Equal(t, int32(5), calls.Load())
	assert.Equal(t, 1, source.openCount("slow.txt"))
	body, _ := cache.Get("slow.txt")
	assert.Equal(t, "eventually", body)
}

// lateStore reports a miss for the first Get, as if it ran just before a fetch filled the cache
type lateStore struct {
	*TextBodyCache
	missed atomic.Bool
}

func (s *lateStore) Get(path string) (string, bool) {
	if s.missed.CompareAndSwap(false, true) {
		return "", false
	}
	return s.TextBodyCache.Get(path)
}

func TestTextFetcher_RechecksCacheBeforeFetching(t *testing.T) {
	source := newFakeSource(map[string]string{"done.txt": "fresh"})
	cache := &lateStore{TextBodyCache: NewTextBodyCache()}
	cache.Set("done.txt", TextFetchFailedMessage)
	fetcher := NewTextFetcher(source, cache, nil, arbor.NewLogger(), 0)

	fetcher.Request(context.Background(), "done.txt")
	fetcher.Wait()

	assert.Equal(t, 0, source.openCount("done.txt"), "a cached failure is never refetched")
	body, _ := cache.Get("done.txt")
	assert.Equal(t, TextFetchFailedMessage, body)
}

func TestTextFetcher_TruncatesLargeBodies(t *testing.T) {
	large := strings.Repeat("a", MaxTextBytes+10)
	source := newFakeSource(map[string]string{"big.txt": large, "exact.txt": large[:MaxTextBytes]})
	cache := NewTextBodyCache()
	fetcher := NewTextFetcher(source, cache, nil, arbor.NewLogger(), 0)

	fetcher.Request(context.Background(), "big.txt")
	fetcher.Request(context.Background(), "exact.txt")
	fetcher.Wait()

	body, ok := cache.Get("big.txt")
	require.True(t, ok)
	assert.True(t, strings.HasSuffix(body, TextTruncatedMarker))
	assert.Equal(t, MaxTextBytes+len(TextTruncatedMarker), len(body))

	body, _ = cache.Get("exact.txt")
	assert.Equal(t, MaxTextBytes, len(body))
	assert.False(t, strings.HasSuffix(body, TextTruncatedMarker))
}

func TestTextFetcher_OutlivesRequestContext(t *testing.T) {
	source := newFakeSource(map[string]string{"a.txt": "alpha"})
	cache := NewTextBodyCache()
	fetcher := NewTextFetcher(source, cache, nil, arbor.NewLogger(), 0)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	fetcher.Request(ctx, "a.txt")
	fetcher.Wait()

	body, ok := cache.Get("a.txt")
	require.True(t, ok)
	assert.Equal(t, "alpha", body)
}

func TestRenderCard_EscapesContent(t *testing.T) {
	desc := models.PreviewDescriptor{
		Path: `notes/<evil>.txt`,
		Type: models.FileTypeText,
		Body: `<script>alert("x")</script> & 'friends'`,
		Tags: []models.TagEntry{{Tag: `<b>bold</b>`, Confidence: models.Confidence{Value: "100%"}}},
	}

	html := RenderCard(desc)
	assert.NotContains(t, html, "<script>")
	assert.NotContains(t, html, "<b>")
	assert.NotContains(t, html, "<evil>")

	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	require.NoError(t, err)

	assert.Equal(t, 0, doc.Find("script").Length())
	assert.Equal(t, desc.Body, doc.Find("pre.text-body").Text())
	assert.Equal(t, "<b>bold</b>", doc.Find(".tag-name").Text())
	path, _ := doc.Find(".result-card").Attr("data-path")
	assert.Equal(t, desc.Path, path)
}

func TestRenderCard_Variants(t *testing.T) {
	projector := NewProjector(NewTextBodyCache(), nil)

	image := RenderCard(projector.Project(&models.FileRecord{Path: "photos/my cat.png", Type: models.FileTypeImage, Color: "pink"}))
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(image))
	require.NoError(t, err)
	src, _ := doc.Find("img.result-image").Attr("src")
	assert.Equal(t, "/content/photos/my%20cat.png", src)
	style, _ := doc.Find(".color-swatch").Attr("style")
	assert.Contains(t, style, "#ffc0cb")

	model := RenderCard(projector.Project(&models.FileRecord{Path: "lamp.glb", Type: models.FileTypeModel3D}))
	doc, err = goquery.NewDocumentFromReader(strings.NewReader(model))
	require.NoError(t, err)
	assert.Equal(t, 1, doc.Find(".model-placeholder").Length())
	viewPath, _ := doc.Find("button.view-3d").Attr("data-path")
	assert.Equal(t, "lamp.glb", viewPath)

	pending := RenderCard(projector.Project(&models.FileRecord{Path: "later.txt", Type: models.FileTypeText}))
	doc, err = goquery.NewDocumentFromReader(strings.NewReader(pending))
	require.NoError(t, err)
	assert.Equal(t, BodyPending, doc.Find(".text-body.pending").Text())
}
