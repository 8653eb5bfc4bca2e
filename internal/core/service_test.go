package core

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"
)

type fakeExports struct {
	saved []Export
	err   error
}

func (f *fakeExports) SaveExport(ctx context.Context, e Export) error {
	if f.err != nil {
		return f.err
	}
	f.saved = append(f.saved, e)
	return nil
}

func TestService_LoadFromHTTP(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/collection.csv" {
			http.NotFound(w, r)
			return
		}
		fmt.Fprint(w, endToEndCSV)
	}))
	defer srv.Close()

	loader := NewLoader(LoaderConfig{Sources: []Source{
		ParseSourceSpec(srv.URL+"/missing.csv", srv.Client(), 0),
		ParseSourceSpec(srv.URL+"/collection.csv", srv.Client(), 0),
	}})
	svc := NewService(loader)

	res, err := svc.Load(context.Background())
	if err != nil {
		t.Fatalf("Load() error: %v", err)
	}
	if !strings.HasSuffix(res.Source, "/collection.csv") {
		t.Errorf("Source = %q", res.Source)
	}

	select {
	case <-svc.Gate().Done():
		t.Error("gate should wait for the view as well")
	default:
	}
	if got := svc.Gate().Pending(); len(got) != 1 || got[0] != ReadyView {
		t.Errorf("Pending() = %v, want [view]", got)
	}

	if got := svc.Artists(); len(got) != 2 {
		t.Errorf("Artists() = %v", got)
	}
	st := svc.Status()
	if !st.Loaded || st.Records != 3 || st.Folders != 2 {
		t.Errorf("Status() = %+v", st)
	}
}

func TestService_LoadFailureKeepsStore(t *testing.T) {
	svc := NewService(NewLoader(LoaderConfig{Sources: []Source{
		StaticSource{Label: "blank", Text: "  "},
	}}))
	if _, err := svc.CommitText("seed", endToEndCSV); err != nil {
		t.Fatal(err)
	}

	_, err := svc.Load(context.Background())
	if !errors.Is(err, ErrLoadFailed) {
		t.Fatalf("Load() error = %v, want ErrLoadFailed", err)
	}
	if svc.Store().Len() != 3 {
		t.Errorf("store was replaced on failure")
	}
	if svc.Status().LastErr == "" {
		t.Error("Status().LastErr should be set")
	}
}

func TestService_AlbumsIgnoreFilter(t *testing.T) {
	svc := NewService(NewLoader(LoaderConfig{}))
	if _, err := svc.CommitText("seed", endToEndCSV); err != nil {
		t.Fatal(err)
	}

	svc.SetFolderSelected("Jazz", false)
	if got := svc.Artists(); len(got) != 1 || got[0] != "Pink Floyd" {
		t.Errorf("Artists() = %v", got)
	}
	if got := svc.Albums("Miles Davis"); len(got) != 2 {
		t.Errorf("Albums() = %d records, want 2 regardless of filter", len(got))
	}

	stats := svc.Stats()
	if stats.Visible != 1 || stats.Total != 3 || !stats.Filtered {
		t.Errorf("Stats() = %+v", stats)
	}

	svc.SelectAllFolders()
	if got := svc.Stats().Visible; got != 3 {
		t.Errorf("after SelectAllFolders visible = %d", got)
	}
}

func TestService_Upload(t *testing.T) {
	exports := &fakeExports{}
	svc := NewService(NewLoader(LoaderConfig{}), WithExportSaver(exports))

	body := "\xEF\xBB\xBF" + endToEndCSV
	res, err := svc.Upload(context.Background(), "mine.CSV", strings.NewReader(body), int64(len(body)))
	if err != nil {
		t.Fatalf("Upload() error: %v", err)
	}
	if res.Source != "upload:mine.CSV" || len(res.Records) != 3 {
		t.Errorf("Upload() = %q, %d records", res.Source, len(res.Records))
	}
	if res.Header[0] != ColArtist {
		t.Errorf("BOM leaked into header: %q", res.Header[0])
	}

	if len(exports.saved) != 1 {
		t.Fatalf("saved %d exports, want 1", len(exports.saved))
	}
	if e := exports.saved[0]; e.FileName != "mine.CSV" || e.Records != 3 || e.ID.String() == "" {
		t.Errorf("saved export = %+v", e)
	}
}

func TestService_UploadErrors(t *testing.T) {
	tests := []struct {
		name     string
		file     string
		body     string
		maxSize  int64
		wantCode string
	}{
		{"wrong extension", "cover.jpg", endToEndCSV, 0, "UPL001"},
		{"empty body", "c.csv", "", 0, "FILE005"},
		{"header only", "c.csv", "Artist,Title\n", 0, "LOAD002"},
		{"too large", "c.csv", endToEndCSV, 10, "FILE001"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc := NewService(NewLoader(LoaderConfig{}), WithMaxUploadSize(tt.maxSize))
			_, err := svc.Upload(context.Background(), tt.file, strings.NewReader(tt.body), 0)
			if err == nil {
				t.Fatal("Upload() should fail")
			}
			if got := MapError(err).Code; got != tt.wantCode {
				t.Errorf("code = %q, want %q (err %v)", got, tt.wantCode, err)
			}
			if svc.Store().Loaded() {
				t.Error("failed upload committed records")
			}
		})
	}
}

func TestService_UploadSaveFailureStillCommits(t *testing.T) {
	exports := &fakeExports{err: errors.New("connection refused")}
	svc := NewService(NewLoader(LoaderConfig{}), WithExportSaver(exports))

	res, err := svc.Upload(context.Background(), "c.csv", strings.NewReader(endToEndCSV), 0)
	if err == nil || MapError(err).Code != "UPL003" {
		t.Fatalf("Upload() error = %v, want UPL003", err)
	}
	if res == nil || svc.Store().Len() != 3 {
		t.Error("upload should be live even when saving fails")
	}
}

func TestService_UploadBusy(t *testing.T) {
	limiter := NewUploadLimiter(1, 10*time.Millisecond)
	svc := NewService(NewLoader(LoaderConfig{}), WithUploadLimiter(limiter))

	if !limiter.TryAcquire() {
		t.Fatal("TryAcquire failed")
	}
	defer limiter.Release()

	_, err := svc.Upload(context.Background(), "c.csv", strings.NewReader(endToEndCSV), 0)
	if !errors.Is(err, ErrTooManyUploads) {
		t.Errorf("Upload() error = %v, want ErrTooManyUploads", err)
	}
}
