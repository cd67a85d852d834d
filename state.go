package tns

import (
	"github.com/everFinance/tns/schema"
)

// State is everything the page renders from.
type State struct {
	Account string              `json:"account"`
	Network string              `json:"network"`
	Domain  string              `json:"domain"`
	Record  string              `json:"record"`
	Editing bool                `json:"editing"`
	Loading bool                `json:"loading"`
	Mints   []schema.MintRecord `json:"mints"`
	Alert   string              `json:"alert"`
}

func InitState() State {
	return State{Mints: []schema.MintRecord{}}
}

type Event interface {
	event()
}

type (
	AccountConnected struct{ Account string }
	NetworkChanged   struct{ Network string }
	DomainInput      struct{ Value string }
	RecordInput      struct{ Value string }
	EditStarted      struct{ Name string }
	EditCancelled    struct{}
	LoadingChanged   struct{ Loading bool }
	MintsFetched     struct{ Mints []schema.MintRecord }
	FormCleared      struct{}
	AlertRaised      struct{ Message string }
	AlertDismissed   struct{}
	Reloaded         struct{}
)

func (AccountConnected) event() {}
func (NetworkChanged) event()   {}
func (DomainInput) event()      {}
func (RecordInput) event()      {}
func (EditStarted) event()      {}
func (EditCancelled) event()    {}
func (LoadingChanged) event()   {}
func (MintsFetched) event()     {}
func (FormCleared) event()      {}
func (AlertRaised) event()      {}
func (AlertDismissed) event()   {}
func (Reloaded) event()         {}

// Reduce returns the state after ev. s is never modified.
func Reduce(s State, ev Event) State {
	switch e := ev.(type) {
	case AccountConnected:
		s.Account = e.Account
	case NetworkChanged:
		s.Network = e.Network
	case DomainInput:
		s.Domain = truncate(e.Value, schema.MaxDomainLength)
	case RecordInput:
		s.Record = e.Value
	case EditStarted:
		s.Editing = true
		s.Domain = e.Name
	case EditCancelled:
		s.Editing = false
		s.Domain = ""
	case LoadingChanged:
		s.Loading = e.Loading
	case MintsFetched:
		s.Mints = append(make([]schema.MintRecord, 0, len(e.Mints)), e.Mints...)
	case FormCleared:
		s.Domain = ""
		s.Record = ""
	case AlertRaised:
		s.Alert = e.Message
	case AlertDismissed:
		s.Alert = ""
	case Reloaded:
		return InitState()
	}
	return s
}

func truncate(v string, n int) string {
	r := []rune(v)
	if len(r) <= n {
		return v
	}
	return string(r[:n])
}

func domainLength(domain string) int {
	return len([]rune(domain))
}
