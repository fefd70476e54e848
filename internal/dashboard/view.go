package dashboard

import (
	"context"
	"errors"
	"log"
	"sync"

	"github.com/jonathan/resume-parser-web/internal/parserapi"
	"github.com/jonathan/resume-parser-web/internal/types"
)

// Messages shown on the dashboard.
const (
	MsgFetchFailed = "Failed to fetch resume data."
	MsgFetchError  = "Error fetching resume data."
	MsgEmpty       = "No resume data found."
)

// ErrNoSuchRecord is returned when a selection is outside the displayed set.
var ErrNoSuchRecord = errors.New("no such resume in the displayed list")

// Lister fetches the resume records in a scope.
type Lister interface {
	ListResumes(ctx context.Context, scope parserapi.Scope) ([]types.ResumeRecord, error)
}

// View is one user's dashboard page: the full set from the last fetch, the
// filtered displayed set and the detail selection. The displayed set is always
// derived from the full set; filtering never fetches.
type View struct {
	ID     string
	UserID string
	Admin  bool

	mu        sync.Mutex
	full      []types.ResumeRecord
	displayed []types.ResumeRecord
	facets    Facets
	facet     Facet
	value     string
	loading   bool
	err       string
	selected  *types.ResumeRecord
	showModal bool
}

// NewView creates an empty view for userID.
func NewView(id, userID string, admin bool) *View {
	return &View{
		ID:     id,
		UserID: userID,
		Admin:  admin,
		facets: DeriveFacets(nil),
	}
}

// Scope returns the fetch scope: every record for administrators, otherwise
// the user's own records. The current user is always sent.
func (v *View) Scope() parserapi.Scope {
	return ScopeFor(v.UserID, v.Admin)
}

// ScopeFor builds the list scope for userID.
func ScopeFor(userID string, admin bool) parserapi.Scope {
	scope := parserapi.Scope{UserID: userID, CurrentUserID: userID}
	if admin {
		scope.UserID = ""
	}
	return scope
}

// Load fetches the records in scope and replaces the full and displayed sets.
// On failure both sets are emptied and an error message is kept for display.
// The loading flag is cleared however the fetch ends.
func (v *View) Load(ctx context.Context, lister Lister) error {
	v.mu.Lock()
	defer v.mu.Unlock()

	v.loading = true
	v.err = ""
	defer func() { v.loading = false }()

	records, err := lister.ListResumes(ctx, v.Scope())
	if err != nil {
		if parserapi.IsStatus(err) {
			v.err = MsgFetchFailed
		} else {
			v.err = MsgFetchError
		}
		v.full = nil
		v.displayed = nil
		v.facets = DeriveFacets(nil)
		log.Printf("[dashboard] view=%s user=%s fetch failed: %v", v.ID, v.UserID, err)
		return err
	}

	v.full = records
	v.displayed = records
	v.facets = DeriveFacets(records)
	log.Printf("[dashboard] view=%s user=%s admin=%t loaded %d resumes", v.ID, v.UserID, v.Admin, len(records))
	return nil
}

// SetFacet switches the filter field. The value resets to empty and the
// displayed set resets to the full set.
func (v *View) SetFacet(f Facet) {
	v.mu.Lock()
	defer v.mu.Unlock()
	v.setFacet(f)
}

func (v *View) setFacet(f Facet) {
	v.facet = f
	v.value = ""
	v.displayed = v.full
}

// SetFacetValue filters the full set on the current facet.
// An empty value shows the full set.
func (v *View) SetFacetValue(value string) {
	v.mu.Lock()
	defer v.mu.Unlock()
	v.setFacetValue(value)
}

func (v *View) setFacetValue(value string) {
	v.value = value
	v.displayed = Filter(v.full, v.facet, value)
}

// ApplyFilter applies a submitted filter form. Changing the facet resets the
// value; otherwise the value is applied to the current facet.
func (v *View) ApplyFilter(f Facet, value string) {
	v.mu.Lock()
	defer v.mu.Unlock()

	if f != v.facet {
		v.setFacet(f)
		return
	}
	v.setFacetValue(value)
}

// Select opens the detail view for the i-th displayed record.
func (v *View) Select(i int) error {
	v.mu.Lock()
	defer v.mu.Unlock()

	if i < 0 || i >= len(v.displayed) {
		return ErrNoSuchRecord
	}
	rec := v.displayed[i]
	v.selected = &rec
	v.showModal = true
	return nil
}

// CloseDetail hides the detail view and clears the selection.
func (v *View) CloseDetail() {
	v.mu.Lock()
	defer v.mu.Unlock()
	v.showModal = false
	v.selected = nil
}

// Snapshot is a read-only copy of a view for rendering.
type Snapshot struct {
	ID        string
	Admin     bool
	Facet     Facet
	Value     string
	Facets    Facets
	Options   []string
	FullCount int
	Displayed []types.ResumeRecord
	Loading   bool
	Err       string
	Selected  *types.ResumeRecord
	ShowModal bool
}

// Empty reports whether nothing is displayed.
func (s Snapshot) Empty() bool {
	return len(s.Displayed) == 0
}

// Snapshot copies the current state of the view.
func (v *View) Snapshot() Snapshot {
	v.mu.Lock()
	defer v.mu.Unlock()

	displayed := make([]types.ResumeRecord, len(v.displayed))
	copy(displayed, v.displayed)

	return Snapshot{
		ID:        v.ID,
		Admin:     v.Admin,
		Facet:     v.facet,
		Value:     v.value,
		Facets:    v.facets,
		Options:   v.facets.For(v.facet),
		FullCount: len(v.full),
		Displayed: displayed,
		Loading:   v.loading,
		Err:       v.err,
		Selected:  v.selected,
		ShowModal: v.showModal && v.selected != nil,
	}
}
