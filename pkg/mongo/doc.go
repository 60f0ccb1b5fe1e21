// Package mongo connects to MongoDB with the v2 driver for the mongo
// uniqueness backend.
//
//	client, err := mongo.New(ctx, cfg)
//	if err != nil {
//		return err
//	}
//	store := uniqueness.NewMongo(client.Database("liveform").Collection("taken_values"), "username", "email")
package mongo
