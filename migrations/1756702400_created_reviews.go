package migrations

import (
	"encoding/json"

	"github.com/pocketbase/pocketbase/core"
	m "github.com/pocketbase/pocketbase/migrations"
)

func init() {
	m.Register(func(app core.App) error {
		jsonData := `{
			"id": "pbc_reviews_00001",
			"name": "reviews",
			"type": "base",
			"system": false,
			"fields": [
				{
					"id": "text_booking_id",
					"name": "booking_id",
					"type": "text",
					"required": true,
					"presentable": false,
					"hidden": false,
					"system": false,
					"min": 0,
					"max": 0,
					"pattern": ""
				},
				{
					"id": "number_rating",
					"name": "rating",
					"type": "number",
					"required": true,
					"presentable": true,
					"hidden": false,
					"system": false,
					"onlyInt": true,
					"min": 1,
					"max": 5
				},
				{
					"id": "text_comment",
					"name": "comment",
					"type": "text",
					"required": false,
					"presentable": false,
					"hidden": false,
					"system": false,
					"min": 0,
					"max": 0,
					"pattern": ""
				},
				{
					"id": "autodate_created",
					"name": "created",
					"type": "autodate",
					"presentable": false,
					"hidden": false,
					"system": false,
					"onCreate": true,
					"onUpdate": false
				},
				{
					"id": "autodate_updated",
					"name": "updated",
					"type": "autodate",
					"presentable": false,
					"hidden": false,
					"system": false,
					"onCreate": true,
					"onUpdate": true
				}
			],
			"indexes": [
				"CREATE UNIQUE INDEX idx_reviews_booking ON reviews (booking_id)"
			],
			"listRule": "",
			"viewRule": "",
			"createRule": null,
			"updateRule": null,
			"deleteRule": null
		}`

		collection := &core.Collection{}
		if err := json.Unmarshal([]byte(jsonData), &collection); err != nil {
			return err
		}

		return app.Save(collection)
	}, func(app core.App) error {
		collection, err := app.FindCollectionByNameOrId("pbc_reviews_00001")
		if err != nil {
			return err
		}

		return app.Delete(collection)
	})
}
