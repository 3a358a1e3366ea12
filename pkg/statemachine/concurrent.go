package statemachine

import (
	"context"
	"sync"

	"github.com/junbin-yang/atmkit/pkg/atm"
)

// Fleet 管理多台互相独立的 ATM 会话，各会话不共享状态
type Fleet struct {
	mu       sync.RWMutex
	machines map[string]Machine
}

// NewFleet 创建会话集合
func NewFleet() *Fleet {
	return &Fleet{
		machines: make(map[string]Machine),
	}
}

// AddMachine 添加会话
func (f *Fleet) AddMachine(name string, machine Machine) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if _, exists := f.machines[name]; exists {
		return ErrSessionExists
	}
	f.machines[name] = machine
	return nil
}

// RemoveMachine 移除会话
func (f *Fleet) RemoveMachine(name string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	delete(f.machines, name)
}

// GetMachine 获取会话
func (f *Fleet) GetMachine(name string) (Machine, bool) {
	f.mu.RLock()
	defer f.mu.RUnlock()
	machine, exists := f.machines[name]
	return machine, exists
}

// Trigger 对指定会话应用操作
func (f *Fleet) Trigger(ctx context.Context, name string, action atm.Action) error {
	f.mu.RLock()
	machine, exists := f.machines[name]
	f.mu.RUnlock()

	if !exists {
		return ErrSessionNotFound
	}

	return machine.Trigger(ctx, action)
}

// TriggerAll 并行地对所有会话应用相同操作
func (f *Fleet) TriggerAll(ctx context.Context, action atm.Action) map[string]error {
	machines := f.snapshot()

	results := make(map[string]error, len(machines))
	var wg sync.WaitGroup
	var mu sync.Mutex

	for name, machine := range machines {
		wg.Add(1)
		go func(n string, m Machine) {
			defer wg.Done()
			err := m.Trigger(ctx, action)
			mu.Lock()
			results[n] = err
			mu.Unlock()
		}(name, machine)
	}

	wg.Wait()
	return results
}

// GetStates 获取所有会话的当前状态
func (f *Fleet) GetStates() map[string]atm.State {
	f.mu.RLock()
	defer f.mu.RUnlock()

	states := make(map[string]atm.State, len(f.machines))
	for name, machine := range f.machines {
		states[name] = machine.Current()
	}
	return states
}

// TotalCash 所有会话机内现金之和
func (f *Fleet) TotalCash() uint64 {
	var total uint64
	for _, s := range f.GetStates() {
		total += s.CashInside
	}
	return total
}

// ResetAll 重置所有会话
func (f *Fleet) ResetAll() map[string]error {
	machines := f.snapshot()

	results := make(map[string]error, len(machines))
	for name, machine := range machines {
		results[name] = machine.Reset()
	}
	return results
}

// Count 返回会话数量
func (f *Fleet) Count() int {
	f.mu.RLock()
	defer f.mu.RUnlock()
	return len(f.machines)
}

func (f *Fleet) snapshot() map[string]Machine {
	f.mu.RLock()
	defer f.mu.RUnlock()
	machines := make(map[string]Machine, len(f.machines))
	for name, machine := range f.machines {
		machines[name] = machine
	}
	return machines
}
