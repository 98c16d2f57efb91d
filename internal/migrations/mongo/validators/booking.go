package validators

import "go.mongodb.org/mongo-driver/bson"

// BookingValidator only constrains the canonical fields. Legacy spellings
// written by older clients pass through untouched.
var BookingValidator = bson.M{
	"$jsonSchema": bson.M{
		"bsonType":             "object",
		"additionalProperties": true,

		"properties": bson.M{
			"donor_id": bson.M{
				"bsonType":  "string",
				"minLength": 1,
			},

			"event_id": bson.M{
				"bsonType": []string{"string", "null"},
			},

			"hospital_id": bson.M{
				"bsonType": []string{"string", "null"},
			},

			"scheduled_date": bson.M{
				"bsonType": "date",
			},

			"status": bson.M{
				"bsonType":  "string",
				"maxLength": 32,
			},

			"unit_id": bson.M{
				"bsonType": []string{"string", "null"},
			},

			"created_at": bson.M{
				"bsonType": "date",
			},
		},
	},
}
