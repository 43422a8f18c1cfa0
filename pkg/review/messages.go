package review

import (
	"fmt"

	"github.com/oklog/ulid/v2"

	"tableflip.dev/planner/pkg/interpretation"
)

// InterpretedMsg is the result of Submit.
type InterpretedMsg struct {
	Epoch     uint64
	MessageID ulid.ULID
	Response  interpretation.Response
	Err       error
}

func (m InterpretedMsg) Describe() string {
	return fmt.Sprintf(`message:%s interpretation:%q err:%v`, m.MessageID, m.Response.Interpretation.ID, m.Err)
}

// ItemsMsg is the result of LoadItems.
type ItemsMsg struct {
	Epoch            uint64
	Gen              uint64
	InterpretationID string
	Items            []interpretation.Item
	Err              error
}

func (m ItemsMsg) Describe() string {
	return fmt.Sprintf(`gen:%d interpretation:%q items:%d err:%v`, m.Gen, m.InterpretationID, len(m.Items), m.Err)
}

// SavedMsg is the result of Save.
type SavedMsg struct {
	Epoch  uint64
	Gen    uint64
	ItemID string
	Item   interpretation.Item
	Err    error
}

func (m SavedMsg) Describe() string {
	return fmt.Sprintf(`gen:%d item:%q err:%v`, m.Gen, m.ItemID, m.Err)
}

// ApprovedMsg is the result of Approve.
type ApprovedMsg struct {
	Epoch        uint64
	Gen          uint64
	ItemID       string
	ResourceType interpretation.ResourceType
	ResourceID   string
	Err          error
}

func (m ApprovedMsg) Describe() string {
	return fmt.Sprintf(`gen:%d item:%q resource:%q err:%v`, m.Gen, m.ItemID, m.ResourceID, m.Err)
}

// HistoryMsg is the result of History.
type HistoryMsg struct {
	Epoch uint64
	Gen   uint64
	Page  interpretation.Page
	Err   error
}

func (m HistoryMsg) Describe() string {
	return fmt.Sprintf(`gen:%d count:%d total:%d err:%v`, m.Gen, len(m.Page.Interpretations), m.Page.Total, m.Err)
}

// OpenedMsg is the result of Open.
type OpenedMsg struct {
	Epoch          uint64
	Gen            uint64
	Interpretation interpretation.Interpretation
	Items          []interpretation.Item
	Err            error
}

func (m OpenedMsg) Describe() string {
	return fmt.Sprintf(`gen:%d interpretation:%q items:%d err:%v`, m.Gen, m.Interpretation.ID, len(m.Items), m.Err)
}
