package matching

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"jobmatch-backend/internal/cache"
	"jobmatch-backend/internal/jobs"
	"jobmatch-backend/internal/locator"
	"jobmatch-backend/internal/profiles"
)

const (
	testSubject = "user-1"
	testJob     = "job-1"
	testResume  = "https://cdn.example.com/resumes/user-1.pdf"
)

func testPDF(t *testing.T, line string) []byte {
	t.Helper()

	content := fmt.Sprintf("BT /F1 12 Tf 72 712 Td (%s) Tj ET", line)
	objects := []string{
		"<< /Type /Catalog /Pages 2 0 R >>",
		"<< /Type /Pages /Kids [3 0 R] /Count 1 >>",
		"<< /Type /Page /Parent 2 0 R /MediaBox [0 0 612 792] /Resources << /Font << /F1 4 0 R >> >> /Contents 5 0 R >>",
		"<< /Type /Font /Subtype /Type1 /BaseFont /Helvetica /Encoding /WinAnsiEncoding >>",
		fmt.Sprintf("<< /Length %d >>\nstream\n%s\nendstream", len(content), content),
	}

	var buf bytes.Buffer
	buf.WriteString("%PDF-1.4\n")
	offsets := make([]int, len(objects))
	for i, obj := range objects {
		offsets[i] = buf.Len()
		fmt.Fprintf(&buf, "%d 0 obj\n%s\nendobj\n", i+1, obj)
	}
	xref := buf.Len()
	fmt.Fprintf(&buf, "xref\n0 %d\n", len(objects)+1)
	buf.WriteString("0000000000 65535 f \n")
	for _, off := range offsets {
		fmt.Fprintf(&buf, "%010d 00000 n \n", off)
	}
	fmt.Fprintf(&buf, "trailer\n<< /Size %d /Root 1 0 R >>\nstartxref\n%d\n%%%%EOF\n", len(objects)+1, xref)
	return buf.Bytes()
}

type fakeClock struct {
	mu  sync.Mutex
	now time.Time
}

func (f *fakeClock) Now() time.Time {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.now
}

func (f *fakeClock) Advance(d time.Duration) {
	f.mu.Lock()
	f.now = f.now.Add(d)
	f.mu.Unlock()
}

type fakeLocator struct {
	calls int32
	data  []byte
	err   error
}

func (f *fakeLocator) Resolve(ctx context.Context, ref locator.Reference) (locator.Resolution, error) {
	atomic.AddInt32(&f.calls, 1)
	if f.err != nil {
		return locator.Resolution{}, f.err
	}
	source := locator.ChooseURL(ref)
	return locator.Resolution{URL: source, SourceURL: source, Reason: locator.ReasonDirectOK, Data: f.data}, nil
}

func (f *fakeLocator) Calls() int32 { return atomic.LoadInt32(&f.calls) }

// fakeAI answers with reply/err. With block set it waits until block is closed;
// with panicMsg set it panics.
type fakeAI struct {
	calls    int32
	reply    string
	err      error
	block    chan struct{}
	panicMsg string
}

func (f *fakeAI) Complete(ctx context.Context, prompt string) (string, error) {
	atomic.AddInt32(&f.calls, 1)
	if f.block != nil {
		<-f.block
	}
	if f.panicMsg != "" {
		panic(f.panicMsg)
	}
	return f.reply, f.err
}

func (f *fakeAI) Calls() int32 { return atomic.LoadInt32(&f.calls) }

type failingResults struct{}

func (failingResults) Create(ctx context.Context, record Record) error {
	return errors.New("db down")
}

func (failingResults) ListBySubject(ctx context.Context, subjectID string, filter ListFilter) ([]Record, error) {
	return nil, errors.New("db down")
}

type fixture struct {
	svc     *Service
	clock   *fakeClock
	loc     *fakeLocator
	results *MemoryRepo
}

// newFixture seeds one React/Node job and one profile whose resume is served as a PDF.
func newFixture(t *testing.T, ai *fakeAI) *fixture {
	t.Helper()
	ctx := context.Background()

	jobRepo := jobs.NewMemoryRepo()
	if err := jobRepo.Upsert(ctx, jobs.Posting{ID: testJob, Title: "Frontend Engineer", CompanyName: "Acme", Skills: "React, Node.js"}); err != nil {
		t.Fatalf("seed job: %v", err)
	}
	profileRepo := profiles.NewMemoryRepo()
	if err := profileRepo.Upsert(ctx, profiles.Profile{ID: testSubject, ResumeURL: testResume}); err != nil {
		t.Fatalf("seed profile: %v", err)
	}

	clock := &fakeClock{now: time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)}
	loc := &fakeLocator{data: testPDF(t, "4 years building React.js apps with Node")}
	results := NewMemoryRepo()

	svc := &Service{
		Jobs:        jobRepo,
		Profiles:    profileRepo,
		Results:     results,
		Locator:     loc,
		ResultCache: cache.New[string, Outcome]().WithClock(clock.Now),
		TextCache:   cache.New[string, string]().WithClock(clock.Now),
		Config:      DefaultConfig(),
		Now:         clock.Now,
	}
	if ai != nil {
		svc.AI = ai
		t.Cleanup(func() {
			if ai.block != nil {
				select {
				case <-ai.block:
				default:
					close(ai.block)
				}
			}
		})
	}
	return &fixture{svc: svc, clock: clock, loc: loc, results: results}
}
