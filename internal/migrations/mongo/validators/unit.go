package validators

import "go.mongodb.org/mongo-driver/bson"

var UnitValidator = bson.M{
	"$jsonSchema": bson.M{
		"bsonType":             "object",
		"additionalProperties": true,

		"properties": bson.M{
			"donor_id": bson.M{
				"bsonType": "string",
			},

			"blood_type": bson.M{
				"bsonType": "string",
				"enum":     []string{"A+", "A-", "B+", "B-", "AB+", "AB-", "O+", "O-"},
			},

			"serial_number": bson.M{
				"bsonType":  "string",
				"minLength": 3,
				"maxLength": 64,
			},

			"amount_ml": bson.M{
				"bsonType": []string{"int", "long"},
				"minimum":  1,
			},

			"donation_date": bson.M{
				"bsonType": "date",
			},

			"expiry_date": bson.M{
				"bsonType": []string{"date", "null"},
			},

			"storage_status": bson.M{
				"bsonType": "string",
				"enum":     []string{"stored", "used", "rejected", "cancelled", "no-show"},
			},

			"used_at": bson.M{
				"bsonType": []string{"date", "null"},
			},
		},
	},
}
