package items

import (
	"context"
	"slices"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/janisto/huma-shared-libs/internal/platform/strutil"
)

// catalogNamespace scopes the name-based IDs of seeded items.
var catalogNamespace = uuid.MustParse("0b6c1f1e-7d1e-4c55-8f7a-3c2d9a4e5b10")

var seedEpoch = time.Date(2024, 1, 15, 10, 30, 0, 0, time.UTC)

var seed = []struct {
	name     string
	category string
	price    float64
}{
	{"Alpha Widget", "electronics", 29.99},
	{"Beta Gadget", "electronics", 49.99},
	{"Gamma Wrench", "tools", 15.50},
	{"Delta Resistor Pack", "components", 8.99},
	{"Epsilon Sensor", "electronics", 34.99},
	{"Zeta Cable", "accessories", 12.99},
	{"Eta Servo", "robotics", 22.00},
	{"Theta Power Bank", "power", 39.00},
	{"Iota Screwdriver Set", "tools", 19.95},
	{"Kappa Controller", "robotics", 64.50},
	{"Lambda Adapter", "accessories", 9.49},
	{"Mu Capacitor Kit", "components", 6.75},
	{"Nu Soldering Iron", "tools", 44.00},
	{"Xi Display", "electronics", 89.00},
	{"Omicron Battery", "power", 14.25},
	{"Pi Board", "electronics", 35.00},
	{"Rho Gripper", "robotics", 27.80},
	{"Sigma Case", "accessories", 17.60},
	{"Tau Multimeter", "tools", 52.30},
	{"Upsilon Charger", "power", 24.99},
	{"Phi Stepper Motor", "robotics", 31.40},
	{"Chi Breadboard", "components", 5.99},
	{"Psi Hub", "accessories", 21.00},
	{"Omega Solar Panel", "power", 79.90},
	{"Aurora Lamp", "electronics", 18.45},
	{"Borealis Drill", "tools", 99.00},
	{"Comet Relay", "components", 4.20},
	{"Dune Chassis", "robotics", 58.00},
	{"Ember Inverter", "power", 129.00},
	{"Fjord Stand", "accessories", 13.30},
}

// SeedItems returns the demo catalog with deterministic IDs and timestamps.
func SeedItems() []Item {
	out := make([]Item, len(seed))
	for i, s := range seed {
		out[i] = Item{
			ID:        uuid.NewSHA1(catalogNamespace, []byte(s.name)).String(),
			Name:      s.name,
			Slug:      strutil.Slug(s.name),
			Category:  s.category,
			Price:     s.price,
			InStock:   i%4 != 2,
			CreatedAt: seedEpoch.Add(time.Duration(i) * 26 * time.Hour),
		}
	}
	return out
}

// Memory is an in-memory Service.
type Memory struct {
	mu    sync.RWMutex
	items []Item
}

// NewMemory returns a catalog holding items.
func NewMemory(items []Item) *Memory {
	sorted := slices.Clone(items)
	slices.SortFunc(sorted, Compare)
	return &Memory{items: sorted}
}

func (m *Memory) List(_ context.Context, params ListParams) ([]Item, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	if params.Category == "" {
		return slices.Clone(m.items), nil
	}
	out := make([]Item, 0, len(m.items))
	for _, item := range m.items {
		if item.Category == params.Category {
			out = append(out, item)
		}
	}
	return out, nil
}

func (m *Memory) Get(_ context.Context, id string) (*Item, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	i := slices.IndexFunc(m.items, func(item Item) bool { return item.ID == id })
	if i < 0 {
		return nil, ErrNotFound
	}
	item := m.items[i]
	return &item, nil
}

// Put inserts or replaces an item, keeping the catalog ordered.
func (m *Memory) Put(item Item) {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.items = slices.DeleteFunc(m.items, func(existing Item) bool { return existing.ID == item.ID })
	i, _ := slices.BinarySearchFunc(m.items, item, Compare)
	m.items = slices.Insert(m.items, i, item)
}

var _ Service = (*Memory)(nil)
