package app

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io"
	"strings"
	"testing"
	"time"
	"unicode/utf8"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/deusflow/trenddigest/internal/digest"
	"github.com/deusflow/trenddigest/internal/logger"
	"github.com/deusflow/trenddigest/internal/news"
)

type fakeLoader struct {
	items []news.Item
	err   error
	calls int
}

func (f *fakeLoader) Load(context.Context) ([]news.Item, error) {
	f.calls++
	return f.items, f.err
}

type recordingWriter struct {
	written []*digest.Digest
	err     error
}

func (w *recordingWriter) Write(_ context.Context, d *digest.Digest) error {
	if w.err != nil {
		return w.err
	}
	w.written = append(w.written, d)
	return nil
}

type recordingNotifier struct {
	sent int
	err  error
}

func (n *recordingNotifier) Notify(context.Context, *digest.Digest) error {
	n.sent++
	return n.err
}

func at(hour, minute int) func() time.Time {
	return func() time.Time {
		return time.Date(2025, 10, 1, hour, minute, 0, 0, digest.Beijing)
	}
}

func scenarioItems() []news.Item {
	return []news.Item{
		{Platform: "baidu_top", Rank: 1, Title: "王健林卖掉万达", URL: "https://b/1", Translation: "Wang Jianlin sells Wanda"},
		{Platform: "weibo_hot", Rank: 2, Title: "王健林卖掉万达广场", URL: "https://w/2"},
		{Platform: "weibo_hot", Rank: 1, Title: "台风登陆广东", URL: "https://w/1"},
	}
}

func newRunner(loader *fakeLoader, w *recordingWriter, n Notifier, now func() time.Time) *Runner {
	return &Runner{
		Loader:    loader,
		Assembler: &digest.Assembler{},
		Writer:    w,
		Notifier:  n,
		Logger:    logger.New(io.Discard, false),
		Now:       now,
	}
}

func TestRun_WritesAndNotifies(t *testing.T) {
	loader := &fakeLoader{items: scenarioItems()}
	w := &recordingWriter{}
	n := &recordingNotifier{}
	r := newRunner(loader, w, n, at(7, 15))

	res, err := r.Run(context.Background(), RunOptions{})
	require.NoError(t, err)
	assert.False(t, res.Skipped)
	assert.NotEmpty(t, res.RunID)
	assert.Equal(t, digest.Morning, res.Type)

	require.Len(t, w.written, 1)
	d := w.written[0]
	assert.Equal(t, "2025-10-01T07:15:00+08:00", d.AsOf)
	require.Len(t, d.TopStories, 1)
	assert.Equal(t, "王健林卖掉万达", d.TopStories[0].PrimaryTitle)
	assert.Equal(t, 1, n.sent)
}

func TestRun_OutsideWindow(t *testing.T) {
	loader := &fakeLoader{items: scenarioItems()}
	w := &recordingWriter{}
	r := newRunner(loader, w, nil, at(6, 59))

	res, err := r.Run(context.Background(), RunOptions{})
	require.NoError(t, err)
	assert.True(t, res.Skipped)
	assert.Equal(t, SkipOutsideWindow, res.Reason)
	assert.Zero(t, loader.calls)
	assert.Empty(t, w.written)
}

func TestRun_ForcedTypeBypassesGate(t *testing.T) {
	w := &recordingWriter{}
	r := newRunner(&fakeLoader{items: scenarioItems()}, w, nil, at(3, 0))

	res, err := r.Run(context.Background(), RunOptions{Type: digest.Final})
	require.NoError(t, err)
	assert.False(t, res.Skipped)
	require.Len(t, w.written, 1)
	assert.Equal(t, digest.Final, w.written[0].DigestType)
}

func TestRun_EmptyPoolWritesNothing(t *testing.T) {
	w := &recordingWriter{}
	n := &recordingNotifier{}
	r := newRunner(&fakeLoader{}, w, n, at(12, 5))

	res, err := r.Run(context.Background(), RunOptions{})
	require.NoError(t, err)
	assert.True(t, res.Skipped)
	assert.Equal(t, SkipNoItems, res.Reason)
	assert.Empty(t, w.written)
	assert.Zero(t, n.sent)
}

func TestRun_Dedupe(t *testing.T) {
	w := &recordingWriter{}
	r := newRunner(&fakeLoader{items: scenarioItems()}, w, nil, at(19, 1))
	r.Dedupe = true

	_, err := r.Run(context.Background(), RunOptions{})
	require.NoError(t, err)
	res, err := r.Run(context.Background(), RunOptions{})
	require.NoError(t, err)
	assert.True(t, res.Skipped)
	assert.Equal(t, SkipDuplicate, res.Reason)
	assert.Len(t, w.written, 1)

	r.Now = func() time.Time { return time.Date(2025, 10, 2, 19, 1, 0, 0, digest.Beijing) }
	res, err = r.Run(context.Background(), RunOptions{})
	require.NoError(t, err)
	assert.False(t, res.Skipped, "next day is a new slot")
}

func TestRun_FailedWriteIsNotDeduped(t *testing.T) {
	w := &recordingWriter{err: errors.New("disk full")}
	r := newRunner(&fakeLoader{items: scenarioItems()}, w, nil, at(23, 0))
	r.Dedupe = true

	_, err := r.Run(context.Background(), RunOptions{})
	require.Error(t, err)

	w.err = nil
	res, err := r.Run(context.Background(), RunOptions{})
	require.NoError(t, err)
	assert.False(t, res.Skipped)
}

func TestRun_LoaderError(t *testing.T) {
	boom := errors.New("boom")
	r := newRunner(&fakeLoader{err: boom}, &recordingWriter{}, nil, at(7, 0))
	_, err := r.Run(context.Background(), RunOptions{})
	assert.ErrorIs(t, err, boom)
}

func TestRun_NotifierFailureDoesNotFailRun(t *testing.T) {
	w := &recordingWriter{}
	r := newRunner(&fakeLoader{items: scenarioItems()}, w, &recordingNotifier{err: errors.New("telegram down")}, at(7, 0))
	_, err := r.Run(context.Background(), RunOptions{})
	require.NoError(t, err)
	assert.Len(t, w.written, 1)
}

func TestRun_DryRun(t *testing.T) {
	w := &recordingWriter{}
	n := &recordingNotifier{}
	var out bytes.Buffer
	r := newRunner(&fakeLoader{items: scenarioItems()}, w, n, at(7, 0))

	res, err := r.Run(context.Background(), RunOptions{DryRun: true, Output: &out})
	require.NoError(t, err)
	require.NotNil(t, res.Digest)
	assert.Empty(t, w.written)
	assert.Zero(t, n.sent)

	var d digest.Digest
	require.NoError(t, json.Unmarshal(out.Bytes(), &d))
	assert.Equal(t, digest.Morning, d.DigestType)
	assert.Contains(t, out.String(), "王健林卖掉万达")
}

func TestMultiWriter(t *testing.T) {
	primary := &recordingWriter{}
	broken := &recordingWriter{err: errors.New("db down")}
	secondary := &recordingWriter{}
	m := &MultiWriter{
		Primary: primary,
		Secondaries: []NamedWriter{
			{Name: "postgres", Writer: broken},
			{Name: "mirror", Writer: secondary},
		},
		Logger: logger.New(io.Discard, false),
	}

	d := &digest.Digest{DigestType: digest.Noon}
	require.NoError(t, m.Write(context.Background(), d))
	assert.Len(t, primary.written, 1)
	assert.Len(t, secondary.written, 1)

	primary.err = errors.New("read-only fs")
	err := m.Write(context.Background(), d)
	assert.ErrorIs(t, err, primary.err)
	assert.Len(t, secondary.written, 1, "secondaries skipped when primary fails")
}

type recordingSender struct{ texts []string }

func (s *recordingSender) SendMessage(_ context.Context, text string) error {
	s.texts = append(s.texts, text)
	return nil
}

func TestFormatDigest(t *testing.T) {
	d := &digest.Digest{
		DigestType:  digest.Morning,
		Date:        "2025-10-01",
		TimeLabel:   "Morning Digest",
		BeijingTime: "07:15",
		TopStories: []digest.Story{{
			Rank:         1,
			Platforms:    []string{"baidu_top", "weibo_hot"},
			PrimaryTitle: "王健林卖掉万达",
			EnglishTitle: "Wang <Jianlin> sells Wanda",
			Summary:      "Summary.",
			SummaryZH:    "摘要。",
			Category:     "business",
		}, {
			Rank:         2,
			Platforms:    []string{"xinhua_news", "thepaper_news"},
			PrimaryTitle: "台风登陆",
			EnglishTitle: digest.UntranslatedTitle,
			Category:     "weather",
		}},
		Metrics:            digest.Metrics{TotalStoriesAnalyzed: 40, PlatformsCovered: 6, CrossPlatformStories: 2},
		PlatformExclusives: map[string]digest.Exclusive{"weibo_hot": {Title: "明星官宣", Weight: 2.5}},
	}

	msg := FormatDigest(d)
	assert.Contains(t, msg, "<b>Morning Digest</b> | 2025-10-01 07:15")
	assert.Contains(t, msg, "<b>1. 王健林卖掉万达</b>")
	assert.Contains(t, msg, "Wang &lt;Jianlin&gt; sells Wanda")
	assert.Contains(t, msg, "Baidu Top, Weibo Hot Search")
	assert.NotContains(t, msg, digest.UntranslatedTitle)
	assert.Contains(t, msg, "Weibo Hot Search: 明星官宣")
	assert.Contains(t, msg, "40 stories analyzed across 6 platforms")
}

func TestFormatDigest_StaysUnderLimit(t *testing.T) {
	d := &digest.Digest{TimeLabel: "Noon Digest"}
	for i := 1; i <= 5; i++ {
		d.TopStories = append(d.TopStories, digest.Story{
			Rank:         i,
			PrimaryTitle: strings.Repeat("长", 100),
			Summary:      strings.Repeat("word ", 300),
			SummaryZH:    strings.Repeat("字", 500),
		})
	}
	msg := FormatDigest(d)
	assert.Less(t, utf8.RuneCountInString(msg), 4000)
	assert.Contains(t, msg, "<b>1. ")
	assert.NotContains(t, msg, "<b>5. ")
}

func TestTelegramNotifier(t *testing.T) {
	s := &recordingSender{}
	n := &TelegramNotifier{Sender: s}
	require.NoError(t, n.Notify(context.Background(), &digest.Digest{TimeLabel: "Final Digest"}))
	require.Len(t, s.texts, 1)
	assert.Contains(t, s.texts[0], "Final Digest")
}
