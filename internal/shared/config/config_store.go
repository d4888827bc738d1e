package config

import (
	"context"
	"strconv"
	"strings"
	"sync"
	"time"

	"golang.org/x/sync/singleflight"
	"gorm.io/gorm"
)

// Well-known keys of the configuracion table.
const (
	KeyToleranciaRetardo       = "tolerancia_retardo"
	KeyHoraEntradaStandar      = "hora_entrada_standar"
	KeyAutoCheckoutActivo      = "salida_automatica_activa"
	KeyAutoCheckoutTolerance   = "salida_automatica_tolerancia"
	KeyAutoCheckoutSoloEntrada = "salida_automatica_solo_entrada"
	KeyRetardosPorFalta        = "retardos_por_falta"
	KeyDiasLaborales           = "dias_laborales"
	KeyDescuentoPorFalta       = "descuento_por_falta"
	KeyIntentosMaximos         = "intentos_maximos"
	KeyBloqueoDuracion         = "bloqueo_duracion"
	KeyPrimerLoginCambio       = "primer_login_cambio"
)

type Entry struct {
	Clave string `gorm:"column:clave;primaryKey"`
	Valor string `gorm:"column:valor"`
}

func (Entry) TableName() string {
	return "configuracion"
}

// Store is a read-through cache over the configuracion key-value table.
// Values change rarely (admin screen) but are read on every punch and
// every sweeper tick, so a short snapshot TTL plus singleflight keeps
// the table out of the hot path.
type Store struct {
	db  *gorm.DB
	ttl time.Duration

	mu       sync.RWMutex
	snapshot map[string]string
	loadedAt time.Time

	sf singleflight.Group
}

func NewStore(db *gorm.DB) *Store {
	return &Store{db: db, ttl: 30 * time.Second}
}

// NewStaticStore returns a Store pre-seeded with fixed values that
// never reloads, for tests.
func NewStaticStore(values map[string]string) *Store {
	if values == nil {
		values = map[string]string{}
	}
	return &Store{ttl: 24 * time.Hour, snapshot: values, loadedAt: time.Now()}
}

func (s *Store) Snapshot(ctx context.Context) (map[string]string, error) {
	s.mu.RLock()
	if s.snapshot != nil && time.Since(s.loadedAt) < s.ttl {
		snap := s.snapshot
		s.mu.RUnlock()
		return snap, nil
	}
	s.mu.RUnlock()

	v, err, _ := s.sf.Do("configuracion", func() (interface{}, error) {
		var rows []Entry
		if err := s.db.WithContext(ctx).Find(&rows).Error; err != nil {
			return nil, err
		}

		snap := make(map[string]string, len(rows))
		for _, row := range rows {
			snap[row.Clave] = row.Valor
		}

		s.mu.Lock()
		s.snapshot = snap
		s.loadedAt = time.Now()
		s.mu.Unlock()

		return snap, nil
	})
	if err != nil {
		return nil, err
	}

	return v.(map[string]string), nil
}

// Invalidate drops the cached snapshot; the next read hits the table.
func (s *Store) Invalidate() {
	s.mu.Lock()
	s.snapshot = nil
	s.mu.Unlock()
}

func (s *Store) GetString(ctx context.Context, key, def string) string {
	snap, err := s.Snapshot(ctx)
	if err != nil {
		return def
	}
	if v, ok := snap[key]; ok && v != "" {
		return v
	}
	return def
}

func (s *Store) GetInt(ctx context.Context, key string, def int) int {
	raw := s.GetString(ctx, key, "")
	if raw == "" {
		return def
	}
	n, err := strconv.Atoi(strings.TrimSpace(raw))
	if err != nil {
		return def
	}
	return n
}

func (s *Store) GetFloat(ctx context.Context, key string, def float64) float64 {
	raw := s.GetString(ctx, key, "")
	if raw == "" {
		return def
	}
	f, err := strconv.ParseFloat(strings.TrimSpace(raw), 64)
	if err != nil {
		return def
	}
	return f
}

func (s *Store) GetBool(ctx context.Context, key string, def bool) bool {
	raw := strings.ToLower(strings.TrimSpace(s.GetString(ctx, key, "")))
	switch raw {
	case "":
		return def
	case "1", "true", "si", "sí":
		return true
	default:
		return false
	}
}
