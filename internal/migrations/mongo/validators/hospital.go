package validators

import "go.mongodb.org/mongo-driver/bson"

var stockEntry = bson.M{
	"bsonType": "object",
	"required": []string{"quantity"},
	"properties": bson.M{
		"quantity": bson.M{
			"bsonType": []string{"int", "long"},
			"minimum":  0,
		},
		"thresholds": bson.M{
			"bsonType": "object",
			"properties": bson.M{
				"low":    bson.M{"bsonType": []string{"int", "long"}, "minimum": 0},
				"medium": bson.M{"bsonType": []string{"int", "long"}, "minimum": 0},
				"high":   bson.M{"bsonType": []string{"int", "long"}, "minimum": 0},
			},
		},
		"last_updated": bson.M{
			"bsonType": "date",
		},
	},
}

// HospitalValidator keeps every stock quantity non-negative at the storage
// layer as well.
var HospitalValidator = bson.M{
	"$jsonSchema": bson.M{
		"bsonType":             "object",
		"required":             []string{"name"},
		"additionalProperties": true,

		"properties": bson.M{
			"name": bson.M{
				"bsonType":  "string",
				"minLength": 1,
				"maxLength": 200,
			},

			"stock": bson.M{
				"bsonType":             "object",
				"additionalProperties": stockEntry,
			},
		},
	},
}
