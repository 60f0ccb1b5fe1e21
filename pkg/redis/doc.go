// Package redis connects to Redis with go-redis/v9, retrying until the server
// answers PING or the connect timeout expires.
//
//	client, err := redis.Connect(ctx, cfg)
//	if err != nil {
//		return err
//	}
//	defer client.Close()
//
//	store := uniqueness.NewRedis(client, "", "username", "email")
//
// Healthcheck adapts a client to the func(context.Context) error shape used by
// httpserver.HealthCheckHandler.
package redis
