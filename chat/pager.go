package chat

import (
	"github.com/charly05tr/devconnect/api"
	"github.com/charly05tr/devconnect/models"
)

// PagerPhase is the explicit per-conversation loading state.
type PagerPhase int

const (
	PhaseIdle PagerPhase = iota
	PhaseResolving
	PhaseLoadingLast
	PhaseReady
	PhaseLoadingOlder
	PhaseFailed
)

func (p PagerPhase) String() string {
	switch p {
	case PhaseIdle:
		return "idle"
	case PhaseResolving:
		return "resolving"
	case PhaseLoadingLast:
		return "loading_last"
	case PhaseReady:
		return "ready"
	case PhaseLoadingOlder:
		return "loading_older"
	case PhaseFailed:
		return "failed"
	}
	return "unknown"
}

// Pager loads a conversation's history backward from the most recent page.
// The backend pages forward from the oldest message, so the pager first
// fetches page 1 to learn the total page count, then fetches the last page,
// and walks backward via prev_page as the user scrolls up.
//
// The pager is the pure state machine; the Store drives the actual fetches
// and feeds results back in. Because the phase is explicit, an older-page
// load cannot be issued twice: StartLoadOlder refuses unless the pager is
// Ready.
type Pager struct {
	phase          PagerPhase
	conversationID int64
	messages       []models.Message
	cursor         models.Pagination
	failReason     string
}

func (p *Pager) Phase() PagerPhase          { return p.phase }
func (p *Pager) ConversationID() int64      { return p.conversationID }
func (p *Pager) Messages() []models.Message { return p.messages }
func (p *Pager) Cursor() models.Pagination  { return p.cursor }
func (p *Pager) FailReason() string         { return p.failReason }

// Reset returns to Idle, dropping the sequence and zeroing the cursor. Used
// unconditionally whenever the selected conversation changes or clears.
func (p *Pager) Reset() {
	*p = Pager{}
}

// StartResolve begins loading a newly selected conversation.
func (p *Pager) StartResolve(conversationID int64) {
	p.Reset()
	p.conversationID = conversationID
	p.phase = PhaseResolving
}

// ResolveResult consumes the page-1 probe. It returns the page number that
// holds the most recent messages and whether that page must be fetched; with
// zero total pages the conversation is empty and the pager is Ready.
func (p *Pager) ResolveResult(page api.MessagesPage) (lastPage int, fetchNeeded bool) {
	if p.phase != PhaseResolving {
		return 0, false
	}
	if page.Pagination.TotalPages <= 0 {
		p.messages = nil
		p.cursor = page.Pagination
		p.phase = PhaseReady
		return 0, false
	}
	p.phase = PhaseLoadingLast
	return page.Pagination.TotalPages, true
}

// LastPageResult consumes the last-page fetch and renders the sequence.
func (p *Pager) LastPageResult(page api.MessagesPage) {
	if p.phase != PhaseLoadingLast {
		return
	}
	p.messages = page.Messages
	p.cursor = page.Pagination
	p.phase = PhaseReady
}

// StartLoadOlder transitions Ready -> LoadingOlder when a previous page
// exists. The returned page number is the one to fetch.
func (p *Pager) StartLoadOlder() (page int, ok bool) {
	if p.phase != PhaseReady {
		return 0, false
	}
	if !p.cursor.HasPrev || p.cursor.PrevPage == nil || *p.cursor.PrevPage <= 0 {
		return 0, false
	}
	p.phase = PhaseLoadingOlder
	return *p.cursor.PrevPage, true
}

// OlderResult prepends the fetched page to the front of the sequence and
// returns how many messages were added, so the view can offset its scroll
// anchor by exactly that much.
func (p *Pager) OlderResult(page api.MessagesPage) (prepended int) {
	if p.phase != PhaseLoadingOlder {
		return 0
	}
	p.messages = append(append([]models.Message{}, page.Messages...), p.messages...)
	p.cursor = page.Pagination
	p.phase = PhaseReady
	return len(page.Messages)
}

// Fail reverts any loading phase to an empty list with a zeroed cursor.
func (p *Pager) Fail(reason string) {
	switch p.phase {
	case PhaseResolving, PhaseLoadingLast, PhaseLoadingOlder:
		p.messages = nil
		p.cursor = models.Pagination{}
		p.failReason = reason
		p.phase = PhaseFailed
	}
}

// AppendLive appends a streamed message for the open conversation. The
// channel echo is the sole source of appends; REST send responses never
// reach the sequence.
func (p *Pager) AppendLive(message models.Message) {
	if message.ConversationID != p.conversationID {
		return
	}
	for i := len(p.messages) - 1; i >= 0; i-- {
		if p.messages[i].ID == message.ID {
			return
		}
	}
	p.messages = append(p.messages, message)
}
