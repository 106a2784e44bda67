package validators

import "go.mongodb.org/mongo-driver/bson"

var MembershipValidator = bson.M{
	"$jsonSchema": bson.M{
		"bsonType": "object",
		"required": []string{
			"property_id",
			"member_name",
			"member_phone",
			"fraction_count",
			"current_balance_days",
			"role",
			"created_at",
		},
		"additionalProperties": true,

		"properties": bson.M{
			"_id": bson.M{
				"bsonType": "objectId",
			},

			"property_id": bson.M{
				"bsonType":  "string",
				"minLength": 24,
				"maxLength": 24,
			},

			"member_name": bson.M{
				"bsonType":  "string",
				"minLength": 2,
				"maxLength": 100,
			},

			"member_phone": bson.M{
				"bsonType": "string",
				"pattern":  `^\+[1-9]\d{7,14}$`,
			},

			"fraction_count": bson.M{
				"bsonType": "int",
				"minimum":  1,
				"maximum":  52,
			},

			// The engine never lets this go negative: debits are
			// conditional on sufficient balance.
			"current_balance_days": bson.M{
				"bsonType": []string{"double", "int"},
				"minimum":  0,
			},

			"role": bson.M{
				"bsonType": "string",
				"enum": []string{
					"master",
					"common",
				},
			},

			"created_at": bson.M{
				"bsonType": "date",
			},
		},
	},
}
