// Copyright 2025 Meridian
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package mongostore

import (
	"context"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"meridian/docstore/store"
)

// Collection implements store.Collection for one named MongoDB collection.
type Collection struct {
	client *Client
	name   string
	schema *store.Schema
}

// Name returns the collection name as registered.
func (c *Collection) Name() string {
	return c.name
}

// Schema returns the schema the collection was bound with.
func (c *Collection) Schema() *store.Schema {
	return c.schema
}

func (c *Collection) coll() (*mongo.Collection, error) {
	db := c.client.database()
	if db == nil {
		return nil, store.E(store.KindConnectionUnavailable, c.name, "client not connected", nil)
	}
	return db.Collection(c.name), nil
}

// Find returns all documents matching the filter.
func (c *Collection) Find(ctx context.Context, filter map[string]interface{}) ([]map[string]interface{}, error) {
	coll, err := c.coll()
	if err != nil {
		return nil, err
	}

	opCtx, cancel := context.WithTimeout(ctx, c.client.timeout)
	defer cancel()

	cursor, err := coll.Find(opCtx, toBSON(filter))
	if err != nil {
		return nil, store.E(store.KindStorageFailed, c.name, "find failed", err)
	}
	defer func() { _ = cursor.Close(opCtx) }()

	return decodeCursor(opCtx, cursor)
}

// FindOne returns the first match or nil when nothing matches.
func (c *Collection) FindOne(ctx context.Context, filter map[string]interface{}) (map[string]interface{}, error) {
	coll, err := c.coll()
	if err != nil {
		return nil, err
	}

	opCtx, cancel := context.WithTimeout(ctx, c.client.timeout)
	defer cancel()

	var result bson.M
	err = coll.FindOne(opCtx, toBSON(filter)).Decode(&result)
	if err == mongo.ErrNoDocuments {
		return nil, nil
	}
	if err != nil {
		return nil, store.E(store.KindStorageFailed, c.name, "findOne failed", err)
	}
	return fromBSONMap(result), nil
}

// FindByID returns the document with the given identifier or nil.
func (c *Collection) FindByID(ctx context.Context, id string) (map[string]interface{}, error) {
	return c.FindOne(ctx, map[string]interface{}{"_id": id})
}

// Create inserts the document after applying schema defaults and the
// validators enabled by opts, and returns it as stored.
func (c *Collection) Create(ctx context.Context, doc map[string]interface{}, opts store.CreateOptions) (map[string]interface{}, error) {
	coll, err := c.coll()
	if err != nil {
		return nil, err
	}

	stored := cloneDoc(doc)
	applyDefaults(stored, c.schema)
	if opts.RunValidators {
		if err := checkRequired(stored, c.schema); err != nil {
			return nil, err
		}
		if err := runFieldValidators(stored, c.schema); err != nil {
			return nil, err
		}
	}
	if opts.PreSave {
		if err := runPreSave(stored, c.schema); err != nil {
			return nil, err
		}
	}

	opCtx, cancel := context.WithTimeout(ctx, c.client.timeout)
	defer cancel()

	if _, err := coll.InsertOne(opCtx, toBSON(stored)); err != nil {
		return nil, store.E(store.KindStorageFailed, c.name, "insert failed", err)
	}
	return stored, nil
}

// FindOneAndUpdate applies doc as a $set to the first filter match. With
// Upsert enabled, a missing document is created; SetDefaults then fills
// schema defaults on the inserted document via $setOnInsert.
func (c *Collection) FindOneAndUpdate(ctx context.Context, filter, doc map[string]interface{}, opts store.UpdateOptions) (map[string]interface{}, error) {
	coll, err := c.coll()
	if err != nil {
		return nil, err
	}

	if opts.RunValidators {
		// Update payloads are partial; only the fields present are checked.
		if err := runFieldValidators(doc, c.schema); err != nil {
			return nil, err
		}
	}

	update := bson.M{"$set": toBSON(doc)}
	if opts.Upsert && opts.SetDefaults && c.schema != nil {
		onInsert := bson.M{}
		for field, value := range c.schema.Defaults {
			if _, present := doc[field]; !present {
				onInsert[field] = value
			}
		}
		if len(onInsert) > 0 {
			update["$setOnInsert"] = onInsert
		}
	}

	mongoOpts := options.FindOneAndUpdate().SetUpsert(opts.Upsert)
	if opts.ReturnNew {
		mongoOpts.SetReturnDocument(options.After)
	}

	opCtx, cancel := context.WithTimeout(ctx, c.client.timeout)
	defer cancel()

	var result bson.M
	err = coll.FindOneAndUpdate(opCtx, toBSON(filter), update, mongoOpts).Decode(&result)
	if err == mongo.ErrNoDocuments {
		return nil, nil
	}
	if err != nil {
		return nil, store.E(store.KindStorageFailed, c.name, "findOneAndUpdate failed", err)
	}
	return fromBSONMap(result), nil
}

// DeleteOne removes the first filter match and returns the removed count.
func (c *Collection) DeleteOne(ctx context.Context, filter map[string]interface{}) (int64, error) {
	coll, err := c.coll()
	if err != nil {
		return 0, err
	}

	opCtx, cancel := context.WithTimeout(ctx, c.client.timeout)
	defer cancel()

	result, err := coll.DeleteOne(opCtx, toBSON(filter))
	if err != nil {
		return 0, store.E(store.KindStorageFailed, c.name, "delete failed", err)
	}
	return result.DeletedCount, nil
}

func decodeCursor(ctx context.Context, cursor *mongo.Cursor) ([]map[string]interface{}, error) {
	var results []map[string]interface{}

	for cursor.Next(ctx) {
		var doc bson.M
		if err := cursor.Decode(&doc); err != nil {
			return nil, store.E(store.KindStorageFailed, "cursor", "decode failed", err)
		}
		results = append(results, fromBSONMap(doc))
	}

	if err := cursor.Err(); err != nil {
		return nil, store.E(store.KindStorageFailed, "cursor", "iteration failed", err)
	}
	return results, nil
}

func cloneDoc(doc map[string]interface{}) map[string]interface{} {
	out := make(map[string]interface{}, len(doc))
	for k, v := range doc {
		out[k] = v
	}
	return out
}
