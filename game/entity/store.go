package entity

// Store is the shared entity store for one encounter. Bosses, enemies and
// companions are kept in creation order so every tick visits them in a
// stable order. Store is not safe for concurrent use; the encounter loop
// owns it.
type Store struct {
	nextID      ID
	player      *Player
	bosses      []*Boss
	enemies     []*Enemy
	companions  []*Companion
	projectiles []*Projectile
}

// NewStore creates an empty Store.
func NewStore() *Store {
	return &Store{}
}

// NewID issues the next entity handle.
func (s *Store) NewID() ID {
	s.nextID++
	return s.nextID
}

// SetPlayer installs (or clears, with nil) the player.
func (s *Store) SetPlayer(p *Player) { s.player = p }

// Player returns the player, or nil when none is present.
func (s *Store) Player() *Player { return s.player }

// ---- Bosses ----

// AddBoss registers b, assigning an ID when it has none.
func (s *Store) AddBoss(b *Boss) *Boss {
	if b.ID == 0 {
		b.ID = s.NewID()
	}
	if b.Phase < 1 {
		b.Phase = 1
	}
	if b.BaseSpeed == 0 {
		b.BaseSpeed = b.Speed
	}
	if b.Alpha == 0 {
		b.Alpha = 1
	}
	s.bosses = append(s.bosses, b)
	return b
}

// Boss returns the boss with id, or nil.
func (s *Store) Boss(id ID) *Boss {
	for _, b := range s.bosses {
		if b.ID == id {
			return b
		}
	}
	return nil
}

// Bosses returns a snapshot of the boss list in creation order.
// Appending during iteration does not affect the returned slice.
func (s *Store) Bosses() []*Boss {
	out := make([]*Boss, len(s.bosses))
	copy(out, s.bosses)
	return out
}

// RemoveBoss deletes a boss from the store. Returns false when absent.
func (s *Store) RemoveBoss(id ID) bool {
	for i, b := range s.bosses {
		if b.ID == id {
			s.bosses = append(s.bosses[:i], s.bosses[i+1:]...)
			return true
		}
	}
	return false
}

// ---- Enemies ----

// AddEnemy registers e, assigning an ID when it has none.
func (s *Store) AddEnemy(e *Enemy) *Enemy {
	if e.ID == 0 {
		e.ID = s.NewID()
	}
	s.enemies = append(s.enemies, e)
	return e
}

// Enemies returns the live view of non-boss enemies.
func (s *Store) Enemies() []*Enemy { return s.enemies }

// ---- Companions ----

// AddCompanion registers c, assigning an ID when it has none.
func (s *Store) AddCompanion(c *Companion) *Companion {
	if c.ID == 0 {
		c.ID = s.NewID()
	}
	s.companions = append(s.companions, c)
	return c
}

// Companion returns the companion with id, or nil.
func (s *Store) Companion(id ID) *Companion {
	for _, c := range s.companions {
		if c.ID == id {
			return c
		}
	}
	return nil
}

// Companions returns a snapshot of all companions in creation order.
func (s *Store) Companions() []*Companion {
	out := make([]*Companion, len(s.companions))
	copy(out, s.companions)
	return out
}

// RemoveCompanion deletes a companion. Returns false when absent.
func (s *Store) RemoveCompanion(id ID) bool {
	for i, c := range s.companions {
		if c.ID == id {
			s.companions = append(s.companions[:i], s.companions[i+1:]...)
			return true
		}
	}
	return false
}

// ---- Projectiles ----

// AddProjectile registers p, assigning an ID when it has none.
func (s *Store) AddProjectile(p *Projectile) *Projectile {
	if p.ID == 0 {
		p.ID = s.NewID()
	}
	s.projectiles = append(s.projectiles, p)
	return p
}

// LiveProjectiles returns projectiles that have not been consumed.
func (s *Store) LiveProjectiles() []*Projectile {
	var out []*Projectile
	for _, p := range s.projectiles {
		if !p.Consumed {
			out = append(out, p)
		}
	}
	return out
}

// ConsumeProjectile marks a projectile as spent.
func (s *Store) ConsumeProjectile(id ID) {
	for _, p := range s.projectiles {
		if p.ID == id {
			p.Consumed = true
			return
		}
	}
}

// PruneProjectiles drops consumed projectiles. Returns how many were removed.
func (s *Store) PruneProjectiles() int {
	kept := s.projectiles[:0]
	for _, p := range s.projectiles {
		if !p.Consumed {
			kept = append(kept, p)
		}
	}
	n := len(s.projectiles) - len(kept)
	for i := len(kept); i < len(s.projectiles); i++ {
		s.projectiles[i] = nil
	}
	s.projectiles = kept
	return n
}
