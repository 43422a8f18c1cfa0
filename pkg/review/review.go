// Package review drives the assistant panel: it keeps the chat transcript,
// submits free text for interpretation, and lets the user edit and approve
// the suggested items.
package review

import (
	"context"
	crand "crypto/rand"
	"errors"
	"io"
	"log/slog"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea/v2"
	"github.com/oklog/ulid/v2"

	"tableflip.dev/planner/pkg/interpretation"
	"tableflip.dev/planner/pkg/tui/events"
)

var (
	// ErrEmpty is returned when submitting blank input.
	ErrEmpty = errors.New("review: input is empty")
	// ErrBusy is returned when a submit is already outstanding.
	ErrBusy = errors.New("review: still waiting for the previous answer")
	// ErrUnknownItem is returned for an id not in the current item list.
	ErrUnknownItem = errors.New("review: unknown item")
	// ErrNotEditable is returned when editing an item that was already created.
	ErrNotEditable = errors.New("review: item is no longer editable")
	// ErrNotPending is returned when approving an item that is not pending.
	ErrNotPending = errors.New("review: item is not pending")
	// ErrInFlight is returned when the item is already being approved.
	ErrInFlight = errors.New("review: approval already in progress")
	// ErrNoResource is recorded when an approval reports success without a
	// resource id.
	ErrNoResource = errors.New("review: approval returned no resource id")
)

// Banner texts.
const (
	BannerInterpret = "Failed to get AI interpretation. Please try again."
	BannerItems     = "Failed to load suggested items. Please try again."
	BannerApprove   = "Failed to approve item. Please try again."
	BannerSave      = "Failed to save item changes. Please try again."
	BannerHistory   = "Failed to load history. Please try again."
)

const component = events.ComponentID("review")

// Role is the author of a transcript message.
type Role string

const (
	RoleUser Role = "user"
	RoleAI   Role = "ai"
)

// State tracks whether a user message reached the server.
type State string

const (
	StatePending   State = "pending"
	StateConfirmed State = "confirmed"
	StateFailed    State = "failed"
)

// Message is one transcript entry.
type Message struct {
	ID               ulid.ULID
	Role             Role
	Content          string
	State            State
	Timestamp        time.Time
	InterpretationID string
}

// API is the subset of the REST client the controller uses.
type API interface {
	Interpret(ctx context.Context, text string) (interpretation.Response, error)
	ListInterpretations(ctx context.Context, limit, offset int) (interpretation.Page, error)
	GetInterpretation(ctx context.Context, id string) (interpretation.Interpretation, error)
	ListItems(ctx context.Context, interpretationID string) ([]interpretation.Item, error)
	UpdateItem(ctx context.Context, id string, data interpretation.Data) (interpretation.Item, error)
	ApproveItem(ctx context.Context, id string, data interpretation.Data) (string, error)
}

// Controller owns the assistant state. It is used from the UI goroutine only.
type Controller struct {
	api     API
	log     *slog.Logger
	now     func() time.Time
	entropy io.Reader
	timeout time.Duration

	epoch      uint64
	messages   []Message
	submitting bool
	active     string

	items    []interpretation.Item
	drafts   map[string]interpretation.Data
	inFlight map[string]bool
	itemsGen uint64

	history    interpretation.Page
	historyGen uint64

	err string
}

// New returns an empty controller.
func New(api API, log *slog.Logger) *Controller {
	if log == nil {
		log = slog.Default()
	}
	return &Controller{
		api:      api,
		log:      log,
		now:      time.Now,
		entropy:  ulid.Monotonic(crand.Reader, 0),
		timeout:  60 * time.Second,
		drafts:   map[string]interpretation.Data{},
		inFlight: map[string]bool{},
	}
}

func (c *Controller) ctx() (context.Context, context.CancelFunc) {
	return context.WithTimeout(context.Background(), c.timeout)
}

// Messages returns a copy of the transcript.
func (c *Controller) Messages() []Message {
	return append([]Message(nil), c.messages...)
}

// Submitting reports whether an interpretation request is outstanding.
func (c *Controller) Submitting() bool { return c.submitting }

// Active returns the interpretation whose items are shown.
func (c *Controller) Active() string { return c.active }

// Items returns a copy of the current item list.
func (c *Controller) Items() []interpretation.Item {
	return append([]interpretation.Item(nil), c.items...)
}

// Item returns one item by id.
func (c *Controller) Item(id string) (interpretation.Item, bool) {
	if idx := c.itemIndex(id); idx >= 0 {
		return c.items[idx], true
	}
	return interpretation.Item{}, false
}

// Draft returns a copy of the local edits for an item.
func (c *Controller) Draft(id string) interpretation.Data {
	return c.drafts[id].Clone()
}

// Approving reports whether an approval for id is outstanding.
func (c *Controller) Approving(id string) bool { return c.inFlight[id] }

// HistoryPage returns the last loaded history page.
func (c *Controller) HistoryPage() interpretation.Page { return c.history }

// Err returns the banner text, or "".
func (c *Controller) Err() string { return c.err }

// ClearErr dismisses the banner.
func (c *Controller) ClearErr() { c.err = "" }

// Reset forgets everything and invalidates in-flight results.
func (c *Controller) Reset() {
	c.epoch++
	c.itemsGen++
	c.historyGen++
	c.messages = nil
	c.submitting = false
	c.active = ""
	c.items = nil
	c.drafts = map[string]interpretation.Data{}
	c.inFlight = map[string]bool{}
	c.history = interpretation.Page{}
	c.err = ""
}

func (c *Controller) newID() ulid.ULID {
	return ulid.MustNew(ulid.Timestamp(c.now()), c.entropy)
}

func (c *Controller) itemIndex(id string) int {
	for i := range c.items {
		if c.items[i].ID == id {
			return i
		}
	}
	return -1
}

func (c *Controller) messageIndex(id ulid.ULID) int {
	for i := range c.messages {
		if c.messages[i].ID == id {
			return i
		}
	}
	return -1
}

// Submit appends the user's message as pending and sends it for
// interpretation.
func (c *Controller) Submit(text string) (tea.Cmd, error) {
	text = strings.TrimSpace(text)
	if text == "" {
		return nil, ErrEmpty
	}
	if c.submitting {
		return nil, ErrBusy
	}
	msg := Message{
		ID:        c.newID(),
		Role:      RoleUser,
		Content:   text,
		State:     StatePending,
		Timestamp: c.now(),
	}
	c.messages = append(c.messages, msg)
	c.submitting = true
	c.err = ""

	epoch, api, id := c.epoch, c.api, msg.ID
	return func() tea.Msg {
		ctx, cancel := c.ctx()
		defer cancel()
		resp, err := api.Interpret(ctx, text)
		return InterpretedMsg{Epoch: epoch, MessageID: id, Response: resp, Err: err}
	}, nil
}

// LoadItems fetches the items of an interpretation, replacing the list on
// success.
func (c *Controller) LoadItems(interpretationID string) tea.Cmd {
	if interpretationID == "" {
		return nil
	}
	c.itemsGen++
	epoch, gen, api := c.epoch, c.itemsGen, c.api
	return func() tea.Msg {
		ctx, cancel := c.ctx()
		defer cancel()
		items, err := api.ListItems(ctx, interpretationID)
		return ItemsMsg{Epoch: epoch, Gen: gen, InterpretationID: interpretationID, Items: items, Err: err}
	}
}

// SetField edits the local draft of an item. Empty strings and empty lists
// remove the key.
func (c *Controller) SetField(itemID, field string, value any) error {
	idx := c.itemIndex(itemID)
	if idx < 0 {
		return ErrUnknownItem
	}
	if !c.items[idx].Editable() {
		return ErrNotEditable
	}
	d, ok := c.drafts[itemID]
	if !ok {
		d = interpretation.Data{}
		c.drafts[itemID] = d
	}
	d.Set(field, value)
	return nil
}

// Save persists the local draft of an item without approving it.
func (c *Controller) Save(itemID string) (tea.Cmd, error) {
	idx := c.itemIndex(itemID)
	if idx < 0 {
		return nil, ErrUnknownItem
	}
	if !c.items[idx].Editable() {
		return nil, ErrNotEditable
	}
	epoch, gen, api := c.epoch, c.itemsGen, c.api
	data := c.drafts[itemID].Clone()
	return func() tea.Msg {
		ctx, cancel := c.ctx()
		defer cancel()
		item, err := api.UpdateItem(ctx, itemID, data)
		return SavedMsg{Epoch: epoch, Gen: gen, ItemID: itemID, Item: item, Err: err}
	}, nil
}

// Approve sends the item's draft for approval.
func (c *Controller) Approve(itemID string) (tea.Cmd, error) {
	idx := c.itemIndex(itemID)
	if idx < 0 {
		return nil, ErrUnknownItem
	}
	item := c.items[idx]
	if item.Status != interpretation.ItemPending {
		return nil, ErrNotPending
	}
	if c.inFlight[itemID] {
		return nil, ErrInFlight
	}
	c.inFlight[itemID] = true

	epoch, gen, api := c.epoch, c.itemsGen, c.api
	data := c.drafts[itemID].Clone()
	resourceType := item.ResourceType
	return func() tea.Msg {
		ctx, cancel := c.ctx()
		defer cancel()
		rid, err := api.ApproveItem(ctx, itemID, data)
		return ApprovedMsg{Epoch: epoch, Gen: gen, ItemID: itemID, ResourceType: resourceType, ResourceID: rid, Err: err}
	}, nil
}

// ApproveAll approves every pending item that is not already in flight.
func (c *Controller) ApproveAll() tea.Cmd {
	var cmds []tea.Cmd
	for _, item := range c.items {
		cmd, err := c.Approve(item.ID)
		if err != nil {
			continue
		}
		cmds = append(cmds, cmd)
	}
	if len(cmds) == 0 {
		return nil
	}
	return tea.Batch(cmds...)
}

// History loads one page of previous interpretations.
func (c *Controller) History(limit, offset int) tea.Cmd {
	c.historyGen++
	epoch, gen, api := c.epoch, c.historyGen, c.api
	return func() tea.Msg {
		ctx, cancel := c.ctx()
		defer cancel()
		page, err := api.ListInterpretations(ctx, limit, offset)
		return HistoryMsg{Epoch: epoch, Gen: gen, Page: page, Err: err}
	}
}

// Open re-opens a previous interpretation and its items.
func (c *Controller) Open(interpretationID string) tea.Cmd {
	if interpretationID == "" {
		return nil
	}
	c.itemsGen++
	epoch, gen, api := c.epoch, c.itemsGen, c.api
	return func() tea.Msg {
		ctx, cancel := c.ctx()
		defer cancel()
		in, err := api.GetInterpretation(ctx, interpretationID)
		if err != nil {
			return OpenedMsg{Epoch: epoch, Gen: gen, Err: err}
		}
		items, err := api.ListItems(ctx, interpretationID)
		return OpenedMsg{Epoch: epoch, Gen: gen, Interpretation: in, Items: items, Err: err}
	}
}

// Update applies a result message. The returned command carries follow-up
// work and events for other components.
func (c *Controller) Update(msg tea.Msg) (tea.Cmd, bool) {
	switch msg := msg.(type) {
	case InterpretedMsg:
		if msg.Epoch != c.epoch {
			return nil, false
		}
		return c.applyInterpreted(msg), true
	case ItemsMsg:
		if msg.Epoch != c.epoch || msg.Gen != c.itemsGen {
			c.log.Debug("review: dropping stale items", "gen", msg.Gen, "current", c.itemsGen)
			return nil, false
		}
		if msg.Err != nil {
			c.log.Error("review: load items", "interpretation", msg.InterpretationID, "err", msg.Err)
			c.err = BannerItems
			return nil, true
		}
		c.setItems(msg.Items)
		return nil, true
	case SavedMsg:
		if msg.Epoch != c.epoch || msg.Gen != c.itemsGen {
			return nil, false
		}
		if msg.Err != nil {
			c.log.Error("review: save item", "item", msg.ItemID, "err", msg.Err)
			c.err = BannerSave
			return nil, true
		}
		if idx := c.itemIndex(msg.ItemID); idx >= 0 {
			c.items[idx] = msg.Item
			c.drafts[msg.ItemID] = msg.Item.Data.Clone()
		}
		return events.NotifyCmd(component, events.NotifySuccess, "Item saved."), true
	case ApprovedMsg:
		if msg.Epoch != c.epoch {
			return nil, false
		}
		return c.applyApproved(msg), true
	case HistoryMsg:
		if msg.Epoch != c.epoch || msg.Gen != c.historyGen {
			return nil, false
		}
		if msg.Err != nil {
			c.log.Error("review: load history", "err", msg.Err)
			c.err = BannerHistory
			return nil, true
		}
		c.history = msg.Page
		return nil, true
	case OpenedMsg:
		if msg.Epoch != c.epoch || msg.Gen != c.itemsGen {
			return nil, false
		}
		if msg.Err != nil {
			c.log.Error("review: open interpretation", "err", msg.Err)
			c.err = BannerItems
			return nil, true
		}
		in := msg.Interpretation
		now := c.now()
		c.messages = append(c.messages,
			Message{ID: c.newID(), Role: RoleUser, Content: in.InputText, State: StateConfirmed, Timestamp: now, InterpretationID: in.ID},
			Message{ID: c.newID(), Role: RoleAI, Content: in.StructuredResult.Summary(), State: StateConfirmed, Timestamp: now, InterpretationID: in.ID},
		)
		c.active = in.ID
		c.setItems(msg.Items)
		return nil, true
	}
	return nil, false
}

func (c *Controller) applyInterpreted(msg InterpretedMsg) tea.Cmd {
	c.submitting = false
	idx := c.messageIndex(msg.MessageID)
	if msg.Err != nil {
		c.log.Error("review: interpret", "err", msg.Err)
		if idx >= 0 {
			c.messages[idx].State = StateFailed
		}
		c.err = BannerInterpret
		return nil
	}
	in := msg.Response.Interpretation
	if idx >= 0 {
		c.messages[idx].State = StateConfirmed
		c.messages[idx].InterpretationID = in.ID
	}
	c.messages = append(c.messages, Message{
		ID:               c.newID(),
		Role:             RoleAI,
		Content:          in.StructuredResult.Summary(),
		State:            StateConfirmed,
		Timestamp:        c.now(),
		InterpretationID: in.ID,
	})
	c.active = in.ID
	return c.LoadItems(in.ID)
}

func (c *Controller) applyApproved(msg ApprovedMsg) tea.Cmd {
	current := msg.Gen == c.itemsGen
	if current {
		delete(c.inFlight, msg.ItemID)
	}
	if msg.Err == nil && msg.ResourceID == "" {
		msg.Err = ErrNoResource
	}
	if msg.Err != nil {
		c.log.Error("review: approve item", "item", msg.ItemID, "err", msg.Err)
		if current {
			c.err = BannerApprove
		}
		return nil
	}

	if current {
		if idx := c.itemIndex(msg.ItemID); idx >= 0 {
			now := c.now()
			rid := msg.ResourceID
			c.items[idx].Status = interpretation.ItemCreated
			c.items[idx].ResourceID = &rid
			c.items[idx].ReviewedAt = &now
		}
	} else {
		c.log.Debug("review: approval finished for a replaced item list", "item", msg.ItemID)
	}

	cmds := []tea.Cmd{events.NotifyCmd(component, events.NotifySuccess, "Task created from suggestion.")}
	if msg.ResourceType == interpretation.ResourceTask || msg.ResourceType == "" {
		cmds = append(cmds, events.TaskCreatedCmd(component, msg.ResourceID, msg.ItemID))
	}
	return tea.Batch(cmds...)
}

func (c *Controller) setItems(items []interpretation.Item) {
	c.items = append([]interpretation.Item(nil), items...)
	c.drafts = make(map[string]interpretation.Data, len(items))
	c.inFlight = map[string]bool{}
	for _, item := range items {
		c.drafts[item.ID] = item.Data.Clone()
	}
	c.err = ""
}
