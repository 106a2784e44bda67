package validators

import "go.mongodb.org/mongo-driver/bson"

var PropertyValidator = bson.M{
	"$jsonSchema": bson.M{
		"bsonType": "object",
		"required": []string{
			"name",
			"address",
			"policy",
			"created_at",
		},
		"additionalProperties": true,

		"properties": bson.M{
			"_id": bson.M{
				"bsonType": "objectId",
			},

			"name": bson.M{
				"bsonType":  "string",
				"minLength": 2,
				"maxLength": 100,
			},

			"address": bson.M{
				"bsonType":  "string",
				"minLength": 2,
				"maxLength": 200,
			},

			"time_zone": bson.M{
				"bsonType": "string",
			},

			"policy": bson.M{
				"bsonType": "object",
				"required": []string{
					"min_stay_days",
					"max_stay_days",
				},
				"properties": bson.M{
					"min_stay_days": bson.M{
						"bsonType": "int",
						"minimum":  1,
						"maximum":  365,
					},
					"max_stay_days": bson.M{
						"bsonType": "int",
						"minimum":  1,
						"maximum":  365,
					},
					"cancellation_deadline_days": bson.M{
						"bsonType": "int",
						"minimum":  0,
						"maximum":  365,
					},
					"checkin_time": bson.M{
						"bsonType": "string",
					},
					"checkout_time": bson.M{
						"bsonType": "string",
					},
					"max_holidays_per_member": bson.M{
						"bsonType": "int",
						"minimum":  0,
					},
					"max_active_reservations_per_member": bson.M{
						"bsonType": "int",
						"minimum":  1,
					},
				},
			},

			"created_at": bson.M{
				"bsonType": "date",
			},
		},
	},
}
