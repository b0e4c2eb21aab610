package logger

import (
	"time"

	"go.uber.org/zap"
)

// =================================================================================
// HTTP
// =================================================================================

func RequestID(v string) zap.Field { return zap.String("request_id", v) }
func Method(v string) zap.Field    { return zap.String("method", v) }
func Path(v string) zap.Field      { return zap.String("path", v) }
func Status(v int) zap.Field       { return zap.Int("status", v) }
func URL(v string) zap.Field       { return zap.String("url", v) }

// DurationMs registra la duración en milisegundos.
func DurationMs(d time.Duration) zap.Field { return zap.Int64("duration_ms", d.Milliseconds()) }

// =================================================================================
// CLAVES / TOKENS
// =================================================================================

func KeyID(v int) zap.Field       { return zap.Int("key_id", v) }
func KeyState(v string) zap.Field { return zap.String("key_state", v) }
func Stale(v bool) zap.Field      { return zap.Bool("stale", v) }
func Count(v int) zap.Field       { return zap.Int("count", v) }

// =================================================================================
// IDENTIDAD
// =================================================================================

func IdentityType(v string) zap.Field { return zap.String("identity_type", v) }
func SubType(v string) zap.Field      { return zap.String("identity_subtype", v) }
func Realm(v string) zap.Field        { return zap.String("realm", v) }

// =================================================================================
// GENÉRICOS
// =================================================================================

func Component(v string) zap.Field { return zap.String("component", v) }
func Op(v string) zap.Field        { return zap.String("op", v) }

// Err registra un error; nil se ignora.
func Err(err error) zap.Field {
	if err == nil {
		return zap.Skip()
	}
	return zap.Error(err)
}

func String(key, v string) zap.Field { return zap.String(key, v) }
func Any(key string, v any) zap.Field { return zap.Any(key, v) }
