package mobileauth

import (
	"time"

	"github.com/google/uuid"
)

// MobileSession is an opaque server-side token for the punch-clock
// client. Sessions are revocable: logout, password change or expiry
// flips them off, so a stolen token dies with the account password.
type MobileSession struct {
	ID              uuid.UUID `gorm:"column:id;type:uuid;primaryKey;default:gen_random_uuid()"`
	EmpleadoID      uuid.UUID `gorm:"column:empleado_id;type:uuid;not null;index"`
	Token           string    `gorm:"column:token;type:char(64);uniqueIndex;not null"`
	Dispositivo     *string   `gorm:"column:dispositivo;type:varchar(200)"`
	IP              *string   `gorm:"column:ip;type:varchar(45)"`
	Temporal        bool      `gorm:"column:temporal;not null;default:false"`
	Expira          time.Time `gorm:"column:expira;type:timestamptz;not null"`
	Activo          bool      `gorm:"column:activo;not null;default:true"`
	UltimaActividad time.Time `gorm:"column:ultima_actividad;type:timestamptz;not null"`
	CreatedAt       time.Time `gorm:"column:created_at"`
}

func (MobileSession) TableName() string {
	return "sesiones_movil"
}

// LoginAttempt records every login, failed or not, keyed by username
// and source address for the lockout window.
type LoginAttempt struct {
	ID        uuid.UUID `gorm:"column:id;type:uuid;primaryKey;default:gen_random_uuid()"`
	Usuario   string    `gorm:"column:usuario;type:varchar(60);not null;index:idx_intentos_usuario_ip"`
	IP        string    `gorm:"column:ip;type:varchar(45);not null;index:idx_intentos_usuario_ip"`
	Exitoso   bool      `gorm:"column:exitoso;not null"`
	Motivo    *string   `gorm:"column:motivo;type:varchar(100)"`
	CreatedAt time.Time `gorm:"column:created_at;index"`
}

func (LoginAttempt) TableName() string {
	return "intentos_login"
}
