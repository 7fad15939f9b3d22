package settings

// Manager is the live, in-memory configuration plus its persistence
// lifecycle: preset rename/duplicate/reset, and the session/total runtime
// counters. It does not handle mounting the underlying filesystem —
// that belongs to whatever Store it's given.
type Manager struct {
	store Store
	data  GlobalConfig

	sessionRuntime    uint32
	lastRuntimeUpdate uint32 // millis timestamp of the last tick
}

func NewManager(store Store) *Manager {
	return &Manager{store: store}
}

// Begin loads the persisted configuration (migrating or defaulting as
// needed) into the live config.
func (m *Manager) Begin() error {
	c, err := m.store.LoadConfig()
	if err != nil {
		return err
	}
	m.data = c
	return nil
}

func (m *Manager) Config() *GlobalConfig { return &m.data }

func (m *Manager) Save() error { return m.store.SaveConfig(&m.data) }

// RenamePreset truncates name to the on-disk 16-character limit and
// persists immediately.
func (m *Manager) RenamePreset(slot int, name string) error {
	if slot < 0 || slot >= MaxPresetSlots {
		return nil
	}
	if len(name) > 16 {
		name = name[:16]
	}
	m.data.PresetNames[slot] = name
	return m.Save()
}

// DuplicatePreset copies one slot's saved file to another without
// touching the live config: it reads straight from storage, not from
// the in-memory state.
func (m *Manager) DuplicatePreset(src, dest int) error {
	if src < 0 || src >= MaxPresetSlots || dest < 0 || dest >= MaxPresetSlots {
		return nil
	}
	c, err := m.store.LoadPreset(src)
	if err != nil {
		return err
	}
	return m.store.SavePreset(dest, &c)
}

// ResetPreset removes the slot's saved preset and restores its default
// name in the live config.
func (m *Manager) ResetPreset(slot int) error {
	return m.store.ResetPreset(slot, &m.data)
}

// LoadPreset replaces the live config with a saved preset, validating
// afterward.
func (m *Manager) LoadPreset(slot int) error {
	c, err := m.store.LoadPreset(slot)
	if err != nil {
		return err
	}
	m.data = c
	Validate(&m.data)
	return nil
}

func (m *Manager) SavePreset(slot int) error {
	return m.store.SavePreset(slot, &m.data)
}

func (m *Manager) FactoryReset() error {
	c, err := m.store.FactoryReset()
	if err != nil {
		return err
	}
	m.data = c
	m.sessionRuntime = 0
	return nil
}

// UpdateRuntime accumulates whole seconds elapsed since the last call
// into both the RAM-only session counter and the persisted total, at a
// 1-second quantization.
func (m *Manager) UpdateRuntime(nowMillis uint32) {
	elapsed := nowMillis - m.lastRuntimeUpdate
	if elapsed < 1000 {
		return
	}
	seconds := elapsed / 1000
	m.lastRuntimeUpdate = nowMillis
	m.sessionRuntime += seconds
	m.data.TotalRuntime += seconds
}

func (m *Manager) SessionRuntime() uint32 { return m.sessionRuntime }

// ResetSessionRuntime zeroes only the RAM counter, called when entering
// standby.
func (m *Manager) ResetSessionRuntime() { m.sessionRuntime = 0 }

func (m *Manager) ResetTotalRuntime() error {
	m.data.TotalRuntime = 0
	return m.Save()
}
