package session

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"testing"
	"time"

	"github.com/kk-code-lab/rview/internal/document"
	"github.com/kk-code-lab/rview/internal/encdetect"
	"github.com/kk-code-lab/rview/internal/host"
	"github.com/kk-code-lab/rview/internal/paginate"
)

func fileOf(name string, data []byte) host.File {
	return host.File{
		Meta: host.Meta{Name: name, Size: int64(len(data)), Modified: time.Now()},
		Data: data,
	}
}

func openSession(t *testing.T, opts Options, data []byte) *Session {
	t.Helper()
	s := New(opts)
	if err := s.Open(context.Background(), fileOf("test.txt", data)); err != nil {
		t.Fatalf("Open: %v", err)
	}
	return s
}

func linesDoc(n int) []byte {
	lines := make([]string, n)
	for i := range lines {
		lines[i] = fmt.Sprintf("line %d", i)
	}
	return []byte(strings.Join(lines, "\n"))
}

func TestOpenBuildsEverything(t *testing.T) {
	s := openSession(t, Options{}, []byte("Hello\nworld"))
	if s.Document() == nil || s.Document().LineCount() != 2 {
		t.Fatalf("document = %+v", s.Document())
	}
	if s.Window() == nil || s.Paginator() == nil {
		t.Fatal("presentation structures missing")
	}
	if s.View().Mode != ModeScroll || s.View().ScrollLine != 0 {
		t.Fatalf("view = %+v", s.View())
	}
	if s.Meta().Name != "test.txt" {
		t.Fatalf("meta = %+v", s.Meta())
	}
}

func TestModeSwitchTranslatesPosition(t *testing.T) {
	s := openSession(t, Options{
		Paginate: paginate.Options{LinesPerPage: 30},
	}, linesDoc(1000))

	s.ScrollTo(450)
	s.SetMode(ModePage)
	if got := s.View().CurrentPage; got != 16 {
		t.Fatalf("page after switch = %d, want 16", got)
	}

	s.SetMode(ModeScroll)
	if got := s.View().ScrollLine; got != 450 {
		t.Fatalf("line after switch back = %d, want 450", got)
	}
}

func TestModeSwitchSettlesOldMode(t *testing.T) {
	s := openSession(t, Options{
		Paginate: paginate.Options{LinesPerPage: 30},
	}, linesDoc(5000))

	if !s.Window().Active() {
		t.Fatal("expected virtualization for 5000 lines")
	}
	s.ScrollTo(2500)
	if len(s.Window().RenderedChunks()) == 0 {
		t.Fatal("no chunks rendered in scroll mode")
	}
	s.SetMode(ModePage)
	if got := s.Window().RenderedChunks(); len(got) != 0 {
		t.Fatalf("chunks %v still rendered after leaving scroll mode", got)
	}
}

func TestSearchAndNavigate(t *testing.T) {
	s := openSession(t, Options{}, []byte("Hello\nworld\nHello\nagain"))
	if n := s.Search("hello"); n != 2 {
		t.Fatalf("match count = %d, want 2", n)
	}

	m, ok := s.NextMatch()
	if !ok || m.Offset != 12 {
		t.Fatalf("NextMatch = %+v, %v", m, ok)
	}
	if got := s.View().ScrollLine; got != 2 {
		t.Fatalf("scroll line after NextMatch = %d, want 2", got)
	}

	m, ok = s.NextMatch()
	if !ok || m.Offset != 0 {
		t.Fatalf("NextMatch wrap = %+v, %v", m, ok)
	}
	if got := s.View().ScrollLine; got != 0 {
		t.Fatalf("scroll line after wrap = %d, want 0", got)
	}
}

func TestRevealCurrentShowsFirstMatch(t *testing.T) {
	s := openSession(t, Options{}, linesDoc(1000))
	s.ScrollTo(900)
	if n := s.Search("line 450"); n != 1 {
		t.Fatalf("match count = %d", n)
	}

	m, ok := s.RevealCurrent()
	if !ok || m.Offset != s.Document().LineStart(450) {
		t.Fatalf("RevealCurrent = %+v, %v", m, ok)
	}
	if got := s.View().ScrollLine; got != 450 {
		t.Fatalf("scroll line = %d, want 450", got)
	}
	if got := s.Cursor().Index(); got != 0 {
		t.Fatalf("cursor must not move, index = %d", got)
	}
}

func TestSearchRevealInPageMode(t *testing.T) {
	s := openSession(t, Options{
		Paginate: paginate.Options{LinesPerPage: 30},
	}, linesDoc(1000))

	s.SetMode(ModePage)
	if n := s.Search("line 450"); n != 1 {
		t.Fatalf("match count = %d", n)
	}
	// The cursor starts on the only match; Next wraps onto it again and
	// reveals it.
	if _, ok := s.NextMatch(); !ok {
		t.Fatal("NextMatch failed")
	}
	if got := s.View().CurrentPage; got != 16 {
		t.Fatalf("page = %d, want 16", got)
	}
}

func TestChangeEncodingInvalidatesMatches(t *testing.T) {
	// 가나 in EUC-KR; as forced Latin-1 the same bytes are still
	// searchable text, but the point is the state reset.
	data := append([]byte("Hello "), 0xB0, 0xA1)
	s := openSession(t, Options{}, data)
	if s.Document().Encoding != encdetect.EUCKR {
		t.Fatalf("detected %s", s.Document().Encoding)
	}
	if n := s.Search("hello"); n != 1 {
		t.Fatalf("match count = %d", n)
	}

	if err := s.ChangeEncoding(context.Background(), encdetect.ISO8859_1); err != nil {
		t.Fatalf("ChangeEncoding: %v", err)
	}
	if s.Document().Encoding != encdetect.ISO8859_1 {
		t.Fatalf("encoding = %s", s.Document().Encoding)
	}
	if len(s.Matches()) != 0 || s.Query() != "" {
		t.Fatal("search state survived re-decode")
	}
	if s.Cursor().Index() != -1 {
		t.Fatalf("cursor index = %d", s.Cursor().Index())
	}
}

func TestFailedOpenKeepsDocument(t *testing.T) {
	s := openSession(t, Options{LargeFileThreshold: 1}, []byte("original"))
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	// Large enough that the sliced decode hits a cancellation check.
	big := make([]byte, 11<<20)
	if err := s.Open(ctx, fileOf("next.txt", big)); !errors.Is(err, context.Canceled) {
		t.Fatalf("Open err = %v, want context.Canceled", err)
	}

	if s.Document() == nil || s.Document().Text != "original" {
		t.Fatal("failed open replaced the previous document")
	}
}

func TestOpenReplacesDocumentAndResetsView(t *testing.T) {
	s := openSession(t, Options{Paginate: paginate.Options{LinesPerPage: 30}}, linesDoc(1000))
	s.ScrollTo(900)
	s.Search("line")

	if err := s.Open(context.Background(), fileOf("other.txt", []byte("fresh"))); err != nil {
		t.Fatalf("second Open: %v", err)
	}
	if s.Document().Text != "fresh" {
		t.Fatalf("text = %q", s.Document().Text)
	}
	if s.View().ScrollLine != 0 {
		t.Fatalf("scroll line = %d", s.View().ScrollLine)
	}
	if len(s.Matches()) != 0 {
		t.Fatal("matches survived document switch")
	}
}

func TestScrollClamping(t *testing.T) {
	s := openSession(t, Options{}, linesDoc(10))
	s.ScrollTo(500)
	if got := s.View().ScrollLine; got != 9 {
		t.Fatalf("scroll line = %d, want 9", got)
	}
	s.ScrollBy(-100)
	if got := s.View().ScrollLine; got != 0 {
		t.Fatalf("scroll line = %d, want 0", got)
	}
}

func TestPageNavigation(t *testing.T) {
	s := openSession(t, Options{Paginate: paginate.Options{LinesPerPage: 30}}, linesDoc(65))
	s.SetMode(ModePage)

	s.NextPage()
	s.NextPage()
	if got := s.View().CurrentPage; got != 3 {
		t.Fatalf("page = %d, want 3", got)
	}
	s.NextPage() // clamped at last page
	if got := s.View().CurrentPage; got != 3 {
		t.Fatalf("page = %d, want clamp at 3", got)
	}
	if err := s.GoToPage(-1); !errors.Is(err, paginate.ErrPageOutOfRange) {
		t.Fatalf("GoToPage(-1) err = %v", err)
	}
}

func TestOperationsWithoutDocument(t *testing.T) {
	s := New(Options{})
	s.ScrollTo(5)
	s.NextPage()
	if n := s.Search("x"); n != 0 {
		t.Fatalf("search on empty session found %d", n)
	}
	if err := s.ChangeEncoding(context.Background(), encdetect.UTF8); !errors.Is(err, ErrNoDocument) {
		t.Fatalf("err = %v", err)
	}
	if err := s.GoToPage(1); !errors.Is(err, ErrNoDocument) {
		t.Fatalf("err = %v", err)
	}
}

func TestChangeEncodingPreservesPlace(t *testing.T) {
	s := openSession(t, Options{Paginate: paginate.Options{LinesPerPage: 30}}, linesDoc(300))
	s.ScrollTo(150)
	if err := s.ChangeEncoding(context.Background(), encdetect.UTF8); err != nil {
		t.Fatalf("ChangeEncoding: %v", err)
	}
	if got := s.View().ScrollLine; got != 150 {
		t.Fatalf("scroll line = %d, want 150", got)
	}
}

func TestDecodeErrorTypeSurfaces(t *testing.T) {
	// An impossible label value maps to a DecodeError at the document
	// boundary; the session passes it through untouched.
	s := openSession(t, Options{}, []byte("text"))
	err := s.ChangeEncoding(context.Background(), encdetect.Encoding(99))
	var decodeErr *document.DecodeError
	if !errors.As(err, &decodeErr) {
		t.Fatalf("err = %v, want *document.DecodeError", err)
	}
	if s.Document().Text != "text" {
		t.Fatal("failed re-decode replaced the document")
	}
}
