package editor

import (
	"errors"
	"net/url"
	"path/filepath"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"

	"github.com/MrSnakeDoc/portal/internal/domain"
	"github.com/MrSnakeDoc/portal/internal/logger"
	"github.com/MrSnakeDoc/portal/internal/store/filestore"
)

func TestRows(t *testing.T) {
	tests := []struct {
		name string
		dept *domain.Department
		want []domain.Link
	}{
		{name: "nil department", dept: nil, want: []domain.Link{Placeholder}},
		{name: "empty links", dept: &domain.Department{}, want: []domain.Link{Placeholder}},
		{
			name: "existing links",
			dept: &domain.Department{Links: []domain.Link{{Name: "a", URL: "https://a"}}},
			want: []domain.Link{{Name: "a", URL: "https://a"}},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if diff := cmp.Diff(tt.want, Rows(tt.dept)); diff != "" {
				t.Errorf("Rows() mismatch (-want +got):\n%s", diff)
			}
		})
	}
}

func TestParseForm(t *testing.T) {
	tests := []struct {
		name    string
		values  url.Values
		want    []domain.Link
		wantErr error
		wantRow int
	}{
		{
			name: "rows kept in order",
			values: url.Values{
				FieldDepartment: {"管理部"},
				FieldName:       {"B", "A"},
				FieldURL:        {"https://b", "https://a"},
				FieldDesc:       {"", " desc "},
			},
			want: []domain.Link{{Name: "B", URL: "https://b"}, {Name: "A", URL: "https://a", Desc: "desc"}},
		},
		{
			name: "removed and blank rows dropped",
			values: url.Values{
				FieldDepartment: {"管理部"},
				FieldName:       {"keep", "drop", "", ""},
				FieldURL:        {"https://k", "https://d", "", ""},
				FieldDesc:       {"", "", "", ""},
				FieldRemove:     {"1", "garbage"},
			},
			want: []domain.Link{{Name: "keep", URL: "https://k"}},
		},
		{
			name: "removing every row empties the department",
			values: url.Values{
				FieldDepartment: {"管理部"},
				FieldName:       {"a"},
				FieldURL:        {"https://a"},
				FieldRemove:     {"0"},
			},
			want: []domain.Link{},
		},
		{
			name: "missing url",
			values: url.Values{
				FieldDepartment: {"管理部"},
				FieldName:       {"ok", "broken"},
				FieldURL:        {"https://ok", ""},
			},
			wantErr: &ValidationError{},
			wantRow: 2,
		},
		{
			name: "missing name with description only",
			values: url.Values{
				FieldDepartment: {"管理部"},
				FieldName:       {""},
				FieldURL:        {""},
				FieldDesc:       {"just a note"},
			},
			wantErr: &ValidationError{},
			wantRow: 1,
		},
		{
			name:    "no department",
			values:  url.Values{FieldName: {"a"}, FieldURL: {"https://a"}},
			wantErr: ErrMissingDepartment,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			form, err := ParseForm(tt.values)

			switch want := tt.wantErr.(type) {
			case nil:
				if err != nil {
					t.Fatalf("ParseForm() error = %v", err)
				}
				if diff := cmp.Diff(tt.want, form.Links); diff != "" {
					t.Errorf("ParseForm() links mismatch (-want +got):\n%s", diff)
				}
			case *ValidationError:
				var verr *ValidationError
				if !errors.As(err, &verr) {
					t.Fatalf("ParseForm() error = %v, want ValidationError", err)
				}
				if verr.Row != tt.wantRow {
					t.Errorf("ValidationError.Row = %d, want %d", verr.Row, tt.wantRow)
				}
			default:
				if !errors.Is(err, want) {
					t.Fatalf("ParseForm() error = %v, want %v", err, want)
				}
			}
		})
	}
}

func TestApplyLeavesInputUntouched(t *testing.T) {
	cfg := filestore.Default()
	form := Form{Department: "管理部", Links: []domain.Link{{Name: "X", URL: "https://x"}}}

	next, err := Apply(cfg, form)
	if err != nil {
		t.Fatalf("Apply() error = %v", err)
	}
	if len(next.Departments["管理部"].Links) != 1 {
		t.Errorf("Apply() result has %d links, want 1", len(next.Departments["管理部"].Links))
	}
	if len(cfg.Departments["管理部"].Links) != 2 {
		t.Error("Apply() mutated its input")
	}

	_, err = Apply(cfg, Form{Department: "不存在"})
	if !errors.Is(err, domain.ErrUnknownDepartment) {
		t.Errorf("Apply(unknown) error = %v, want ErrUnknownDepartment", err)
	}
}

func newService(t *testing.T) (*Service, *filestore.Store) {
	t.Helper()
	store := filestore.New(filepath.Join(t.TempDir(), "money_config.json"), logger.Nop())
	return NewService(store, logger.Nop()), store
}

func managerSession(t *testing.T, store *filestore.Store) *domain.Session {
	t.Helper()
	snap, err := store.Load()
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	s := domain.NewSession("s1", snap.Config, snap.Revision, time.Now())
	if err := s.Authenticate(domain.DefaultAdminPassword); err != nil {
		t.Fatalf("Authenticate() error = %v", err)
	}
	return s
}

func TestServiceSave(t *testing.T) {
	svc, store := newService(t)
	sess := managerSession(t, store)
	links := []domain.Link{{Name: "X", URL: "https://x", Desc: ""}}

	err := svc.Save(sess, Form{Department: "管理部", Revision: sess.Revision, Links: links})
	if err != nil {
		t.Fatalf("Save() error = %v", err)
	}

	if diff := cmp.Diff(links, sess.Config.Departments["管理部"].Links); diff != "" {
		t.Errorf("session config not updated (-want +got):\n%s", diff)
	}

	snap, err := store.Load()
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if diff := cmp.Diff(links, snap.Config.Departments["管理部"].Links); diff != "" {
		t.Errorf("stored links mismatch (-want +got):\n%s", diff)
	}
	if snap.Revision != sess.Revision {
		t.Error("session should adopt the revision it wrote")
	}
}

func TestServiceSaveRequiresManager(t *testing.T) {
	svc, store := newService(t)
	sess := managerSession(t, store)
	sess.Logout()

	err := svc.Save(sess, Form{Department: "管理部", Revision: sess.Revision})
	if !errors.Is(err, domain.ErrNotManager) {
		t.Errorf("Save() error = %v, want ErrNotManager", err)
	}
}

func TestServiceSaveConflictRefreshesSession(t *testing.T) {
	svc, store := newService(t)
	first := managerSession(t, store)
	second := managerSession(t, store)

	if err := svc.Save(first, Form{
		Department: "行銷部",
		Revision:   first.Revision,
		Links:      []domain.Link{{Name: "first", URL: "https://1"}},
	}); err != nil {
		t.Fatalf("first Save() error = %v", err)
	}

	err := svc.Save(second, Form{
		Department: "電商部",
		Revision:   second.Revision,
		Links:      []domain.Link{{Name: "second", URL: "https://2"}},
	})
	if !errors.Is(err, domain.ErrConflict) {
		t.Fatalf("stale Save() error = %v, want ErrConflict", err)
	}

	if second.Revision != first.Revision {
		t.Error("conflicting session should be refreshed to the stored revision")
	}
	if got := second.Config.Departments["行銷部"].Links[0].Name; got != "first" {
		t.Errorf("refreshed session sees %q, want the winning edit", got)
	}
	if len(second.Config.Departments["電商部"].Links) != 4 {
		t.Error("rejected edit must not be applied")
	}
}

func TestRawRowsKeepsInvalidRows(t *testing.T) {
	values := url.Values{
		FieldName:   {"a", "", "", "gone"},
		FieldURL:    {"", "https://b", "", "https://g"},
		FieldDesc:   {"", "", "", ""},
		FieldRemove: {"3"},
	}

	want := []domain.Link{{Name: "a"}, {URL: "https://b"}}
	if diff := cmp.Diff(want, RawRows(values)); diff != "" {
		t.Errorf("RawRows() mismatch (-want +got):\n%s", diff)
	}
}

func TestBlankRows(t *testing.T) {
	values := url.Values{
		FieldName:   {"a", "", "", ""},
		FieldURL:    {"https://a", "", "", ""},
		FieldDesc:   {"", "", "x", ""},
		FieldRemove: {"3"},
	}

	if got := BlankRows(values); got != 1 {
		t.Errorf("BlankRows() = %d, want 1", got)
	}
	if got := BlankRows(url.Values{}); got != 0 {
		t.Errorf("BlankRows(empty) = %d, want 0", got)
	}
}
