// Package logger provee el logger Zap compartido por el validador y los comandos.
//
// # Design Decisions
//
//   - Singleton: una sola instancia global inicializada con Init().
//   - Context Scoping: cada request lleva un logger "scoped" (request_id, method, path)
//     inyectado por el middleware de logging.
//   - Environments: "dev" usa consola con colores, "prod" usa JSON.
//   - Los componentes del core (cache de claves, verificador) reciben un *zap.Logger
//     explícito; si no se pasa ninguno usan Named(<componente>).
//
// # Usage
//
// Inicialización (una vez en main.go):
//
//	logger.Init(logger.Config{Env: cfg.App.Env, Level: cfg.Log.Level})
//	defer logger.Sync()
//
// En handlers (con contexto):
//
//	log := logger.From(ctx)
//	log.Info("token verified", logger.KeyID(id))
package logger
