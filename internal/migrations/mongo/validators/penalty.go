package validators

import "go.mongodb.org/mongo-driver/bson"

var PenaltyValidator = bson.M{
	"$jsonSchema": bson.M{
		"bsonType": "object",
		"required": []string{
			"membership_id",
			"reservation_id",
			"reason",
			"created_at",
		},
		"additionalProperties": true,

		"properties": bson.M{
			"_id": bson.M{
				"bsonType": "objectId",
			},

			"membership_id": bson.M{
				"bsonType":  "string",
				"minLength": 24,
				"maxLength": 24,
			},

			"reservation_id": bson.M{
				"bsonType":  "string",
				"minLength": 24,
				"maxLength": 24,
			},

			"reason": bson.M{
				"bsonType": "string",
				"enum": []string{
					"late_cancellation",
					"no_show",
				},
			},

			"created_at": bson.M{
				"bsonType": "date",
			},
		},
	},
}
