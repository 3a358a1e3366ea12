package statemachine

import (
	"context"
	"encoding/json"
	"strings"
	"sync"
	"time"

	"github.com/pkg/errors"

	"github.com/junbin-yang/atmkit/pkg/atm"
)

// Snapshot 状态快照
type Snapshot struct {
	State     atm.State              `json:"-"`
	Timestamp time.Time              `json:"timestamp"`
	Metadata  map[string]interface{} `json:"metadata,omitempty"`
}

// History 状态历史记录
type History struct {
	From       Phase     `json:"from"`
	To         Phase     `json:"to"`
	Action     string    `json:"action"`
	Outcome    Outcome   `json:"outcome"`
	CashBefore uint64    `json:"cash_before"`
	CashAfter  uint64    `json:"cash_after"`
	Timestamp  time.Time `json:"timestamp"`
}

// PersistentSession 记录转换历史并支持快照的会话，数据只保存在内存中
type PersistentSession struct {
	*Session
	histMu  sync.RWMutex
	history []History
	limit   int
}

// NewPersistentSession 创建记录历史的会话，limit <= 0 表示不限制条数
func NewPersistentSession(initial atm.State, limit int, opts ...SessionOption) *PersistentSession {
	p := &PersistentSession{
		Session: NewSession(initial, opts...),
		history: make([]History, 0),
		limit:   limit,
	}
	p.OnTransition(p.record)
	return p
}

// record 追加一条历史，超出上限时丢弃最旧的记录
func (p *PersistentSession) record(_ context.Context, t Transition) error {
	h := History{
		From:       t.FromPhase(),
		To:         t.ToPhase(),
		Action:     t.Action.String(),
		Outcome:    t.Outcome(),
		CashBefore: t.From.CashInside,
		CashAfter:  t.To.CashInside,
		Timestamp:  time.Now(),
	}

	p.histMu.Lock()
	defer p.histMu.Unlock()
	p.history = append(p.history, h)
	if p.limit > 0 && len(p.history) > p.limit {
		p.history = append([]History{}, p.history[len(p.history)-p.limit:]...)
	}
	return nil
}

// CreateSnapshot 创建状态快照
func (p *PersistentSession) CreateSnapshot(metadata map[string]interface{}) *Snapshot {
	return &Snapshot{
		State:     p.Current(),
		Timestamp: time.Now(),
		Metadata:  metadata,
	}
}

// RestoreSnapshot 恢复状态快照
func (p *PersistentSession) RestoreSnapshot(snapshot *Snapshot) error {
	if snapshot == nil {
		return ErrInvalidSnapshot
	}
	p.restore(snapshot.State)
	return nil
}

// GetHistory 获取状态历史
func (p *PersistentSession) GetHistory() []History {
	p.histMu.RLock()
	defer p.histMu.RUnlock()
	return append([]History{}, p.history...)
}

// ClearHistory 清空历史记录
func (p *PersistentSession) ClearHistory() {
	p.histMu.Lock()
	defer p.histMu.Unlock()
	p.history = make([]History, 0)
}

// stateJSON atm.State 的 JSON 表示
type stateJSON struct {
	CashInside uint64   `json:"cash_inside"`
	Auth       Phase    `json:"auth"`
	PinHash    uint64   `json:"pin_hash,omitempty"`
	Register   []string `json:"register"`
}

func encodeState(s atm.State) stateJSON {
	j := stateJSON{
		CashInside: s.CashInside,
		Auth:       PhaseOf(s.Auth),
		Register:   make([]string, len(s.Register)),
	}
	if a, ok := s.Auth.(atm.Authenticating); ok {
		j.PinHash = a.PinHash
	}
	for i, k := range s.Register {
		j.Register[i] = k.String()
	}
	return j
}

func decodeState(j stateJSON) (atm.State, error) {
	keys, err := atm.ParseDigits(strings.Join(j.Register, ""))
	if err != nil {
		return atm.State{}, errors.Wrap(ErrInvalidSnapshot, err.Error())
	}

	s := atm.State{CashInside: j.CashInside, Register: keys}
	switch j.Auth {
	case PhaseWaiting, "":
		s.Auth = atm.Waiting{}
	case PhaseAuthenticating:
		s.Auth = atm.Authenticating{PinHash: j.PinHash}
	case PhaseAuthenticated:
		s.Auth = atm.Authenticated{}
	default:
		return atm.State{}, errors.Wrapf(ErrInvalidSnapshot, "unknown auth %q", j.Auth)
	}
	return s, nil
}

type sessionJSON struct {
	Name    string    `json:"name"`
	Current stateJSON `json:"current"`
	Initial stateJSON `json:"initial"`
	History []History `json:"history"`
}

// MarshalJSON 序列化会话
func (p *PersistentSession) MarshalJSON() ([]byte, error) {
	p.mu.RLock()
	data := sessionJSON{
		Name:    p.name,
		Current: encodeState(p.current),
		Initial: encodeState(p.initial),
	}
	p.mu.RUnlock()

	data.History = p.GetHistory()
	return json.Marshal(data)
}

// UnmarshalJSON 反序列化会话
func (p *PersistentSession) UnmarshalJSON(raw []byte) error {
	var data sessionJSON
	if err := json.Unmarshal(raw, &data); err != nil {
		return errors.Wrap(err, "unmarshal session")
	}

	current, err := decodeState(data.Current)
	if err != nil {
		return err
	}
	initial, err := decodeState(data.Initial)
	if err != nil {
		return err
	}

	p.mu.Lock()
	if data.Name != "" {
		p.name = data.Name
	}
	p.current = current
	p.initial = initial
	p.mu.Unlock()

	p.histMu.Lock()
	p.history = append([]History{}, data.History...)
	p.histMu.Unlock()
	return nil
}
