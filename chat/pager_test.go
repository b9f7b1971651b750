package chat

import (
	"testing"

	"github.com/charly05tr/devconnect/api"
	"github.com/charly05tr/devconnect/models"
)

// pageOf builds the backend's forward-indexed page response for a
// conversation holding totalItems messages with ids 1..totalItems.
func pageOf(conversationID int64, totalItems, perPage, page int) api.MessagesPage {
	totalPages := (totalItems + perPage - 1) / perPage

	start := (page-1)*perPage + 1
	end := page * perPage
	if end > totalItems {
		end = totalItems
	}

	var messages []models.Message
	for id := start; id <= end; id++ {
		messages = append(messages, makeMessage(int64(id), conversationID, 20, "m"))
	}

	pagination := models.Pagination{
		TotalItems:  totalItems,
		TotalPages:  totalPages,
		CurrentPage: page,
		PerPage:     perPage,
		HasNext:     page < totalPages,
		HasPrev:     page > 1,
	}
	if pagination.HasNext {
		next := page + 1
		pagination.NextPage = &next
	}
	if pagination.HasPrev {
		prev := page - 1
		pagination.PrevPage = &prev
	}
	return api.MessagesPage{Messages: messages, Pagination: pagination}
}

func TestResolveEmptyConversation(t *testing.T) {
	var pager Pager
	pager.StartResolve(5)
	if pager.Phase() != PhaseResolving {
		t.Fatalf("Expected resolving, got %s", pager.Phase())
	}

	_, fetchNeeded := pager.ResolveResult(pageOf(5, 0, 100, 1))
	if fetchNeeded {
		t.Error("Expected no last-page fetch for an empty conversation")
	}
	if pager.Phase() != PhaseReady {
		t.Errorf("Expected ready, got %s", pager.Phase())
	}
	if len(pager.Messages()) != 0 {
		t.Errorf("Expected empty sequence, got %d messages", len(pager.Messages()))
	}
}

// 250 messages at page size 100: the probe learns 3 total pages, the last
// page holds items 201-250, and scrolling up prepends page 2 (101-200).
func TestResolveLastPageThenOlder(t *testing.T) {
	const conversationID = int64(5)
	const totalItems, perPage = 250, 100

	var pager Pager
	pager.StartResolve(conversationID)

	lastPage, fetchNeeded := pager.ResolveResult(pageOf(conversationID, totalItems, perPage, 1))
	if !fetchNeeded {
		t.Fatal("Expected a last-page fetch")
	}
	if lastPage != 3 {
		t.Fatalf("Expected last page 3, got %d", lastPage)
	}
	if pager.Phase() != PhaseLoadingLast {
		t.Fatalf("Expected loading_last, got %s", pager.Phase())
	}

	pager.LastPageResult(pageOf(conversationID, totalItems, perPage, lastPage))
	if pager.Phase() != PhaseReady {
		t.Fatalf("Expected ready, got %s", pager.Phase())
	}

	messages := pager.Messages()
	if len(messages) != 50 {
		t.Fatalf("Expected 50 messages on the last page, got %d", len(messages))
	}
	if messages[0].ID != 201 || messages[len(messages)-1].ID != 250 {
		t.Errorf("Expected items 201-250, got %d-%d", messages[0].ID, messages[len(messages)-1].ID)
	}

	cursor := pager.Cursor()
	if cursor.CurrentPage != 3 {
		t.Errorf("Expected current_page 3, got %d", cursor.CurrentPage)
	}
	if !cursor.HasPrev || cursor.PrevPage == nil || *cursor.PrevPage != 2 {
		t.Errorf("Expected has_prev with prev_page 2, got %+v", cursor)
	}

	olderPage, ok := pager.StartLoadOlder()
	if !ok || olderPage != 2 {
		t.Fatalf("Expected older fetch for page 2, got page %d ok %v", olderPage, ok)
	}

	prepended := pager.OlderResult(pageOf(conversationID, totalItems, perPage, olderPage))
	if prepended != 100 {
		t.Errorf("Expected 100 prepended messages, got %d", prepended)
	}

	messages = pager.Messages()
	if len(messages) != 150 {
		t.Fatalf("Expected 150 messages after prepend, got %d", len(messages))
	}
	if messages[0].ID != 101 || messages[len(messages)-1].ID != 250 {
		t.Errorf("Expected items 101-250 in order, got %d-%d", messages[0].ID, messages[len(messages)-1].ID)
	}
	if got := pager.Cursor().CurrentPage; got != 2 {
		t.Errorf("Expected current_page 2 after the older fetch, got %d", got)
	}
}

// Cursor invariant: a page fetch sets current_page to the requested page
// and has_prev holds iff prev_page is non-nil and positive.
func TestCursorInvariant(t *testing.T) {
	for page := 1; page <= 3; page++ {
		cursor := pageOf(1, 250, 100, page).Pagination
		if cursor.CurrentPage != page {
			t.Errorf("Page %d: current_page = %d", page, cursor.CurrentPage)
		}
		wantPrev := cursor.PrevPage != nil && *cursor.PrevPage > 0
		if cursor.HasPrev != wantPrev {
			t.Errorf("Page %d: has_prev = %v but prev_page = %v", page, cursor.HasPrev, cursor.PrevPage)
		}
	}
}

func TestLoadOlderRefusedWhileOutstanding(t *testing.T) {
	var pager Pager
	pager.StartResolve(1)
	pager.ResolveResult(pageOf(1, 250, 100, 1))
	pager.LastPageResult(pageOf(1, 250, 100, 3))

	if _, ok := pager.StartLoadOlder(); !ok {
		t.Fatal("Expected first older fetch to start")
	}
	if _, ok := pager.StartLoadOlder(); ok {
		t.Error("Expected duplicate older fetch to be refused while one is in flight")
	}
}

func TestLoadOlderRefusedWithoutPrevPage(t *testing.T) {
	var pager Pager
	pager.StartResolve(1)
	pager.ResolveResult(pageOf(1, 50, 100, 1))
	pager.LastPageResult(pageOf(1, 50, 100, 1))

	if _, ok := pager.StartLoadOlder(); ok {
		t.Error("Expected no older fetch when page 1 is already loaded")
	}
}

func TestFailureZeroesCursorAndSequence(t *testing.T) {
	var pager Pager
	pager.StartResolve(1)
	pager.ResolveResult(pageOf(1, 250, 100, 1))
	pager.Fail("boom")

	if pager.Phase() != PhaseFailed {
		t.Fatalf("Expected failed, got %s", pager.Phase())
	}
	if len(pager.Messages()) != 0 {
		t.Error("Expected an empty sequence after failure")
	}
	if pager.Cursor() != (models.Pagination{}) {
		t.Errorf("Expected a zeroed cursor, got %+v", pager.Cursor())
	}
	if pager.FailReason() != "boom" {
		t.Errorf("Expected fail reason %q, got %q", "boom", pager.FailReason())
	}
}

func TestReselectResetsUnconditionally(t *testing.T) {
	var pager Pager
	pager.StartResolve(1)
	pager.ResolveResult(pageOf(1, 250, 100, 1))
	pager.LastPageResult(pageOf(1, 250, 100, 3))

	pager.StartResolve(2)
	if pager.ConversationID() != 2 {
		t.Errorf("Expected conversation 2, got %d", pager.ConversationID())
	}
	if len(pager.Messages()) != 0 {
		t.Error("Expected the sequence to be dropped on reselect")
	}
	if pager.Cursor() != (models.Pagination{}) {
		t.Error("Expected the cursor to be reset on reselect")
	}

	pager.Reset()
	if pager.Phase() != PhaseIdle {
		t.Errorf("Expected idle after reset, got %s", pager.Phase())
	}
}

func TestAppendLiveDeduplicates(t *testing.T) {
	var pager Pager
	pager.StartResolve(1)
	pager.ResolveResult(pageOf(1, 0, 100, 1))

	echo := makeMessage(42, 1, 20, "hi")
	pager.AppendLive(echo)
	pager.AppendLive(echo)
	if got := len(pager.Messages()); got != 1 {
		t.Errorf("Expected the echo to appear exactly once, got %d", got)
	}

	pager.AppendLive(makeMessage(43, 99, 20, "other conversation"))
	if got := len(pager.Messages()); got != 1 {
		t.Errorf("Expected messages for other conversations to be ignored, got %d", got)
	}
}
