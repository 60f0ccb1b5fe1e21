// Package logger builds the service's *slog.Logger.
//
// Records logged with a request context pick up attributes such as the
// request ID through ContextExtractor functions:
//
//	log := logger.New(
//		logger.WithEnvironment(environment.Parse(os.Getenv("APP_ENV")), "liveform"),
//		logger.WithContextExtractors(requestid.LoggerExtractor()),
//	)
//	log.InfoContext(r.Context(), "account created", logger.FormID("signup"))
//
// The attribute helpers in attr.go keep key names consistent across packages.
package logger
