package migrations

import (
	"encoding/json"

	"github.com/pocketbase/pocketbase/core"
	m "github.com/pocketbase/pocketbase/migrations"
)

func init() {
	m.Register(func(app core.App) error {
		jsonData := `{
			"id": "pbc_slots_000001",
			"name": "slots",
			"type": "base",
			"system": false,
			"fields": [
				{
					"id": "text_turf_id",
					"name": "turf_id",
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
					"id": "date_start_time",
					"name": "start_time",
					"type": "date",
					"required": true,
					"presentable": false,
					"hidden": false,
					"system": false,
					"min": "",
					"max": ""
				},
				{
					"id": "date_end_time",
					"name": "end_time",
					"type": "date",
					"required": true,
					"presentable": false,
					"hidden": false,
					"system": false,
					"min": "",
					"max": ""
				},
				{
					"id": "number_price",
					"name": "price",
					"type": "number",
					"required": true,
					"presentable": false,
					"hidden": false,
					"system": false,
					"onlyInt": true,
					"min": 0,
					"max": null
				},
				{
					"id": "select_status",
					"name": "status",
					"type": "select",
					"required": true,
					"presentable": true,
					"hidden": false,
					"system": false,
					"maxSelect": 1,
					"values": [
						"available",
						"held",
						"booked",
						"blocked"
					]
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
				"CREATE INDEX idx_slots_turf_start ON slots (turf_id, start_time)",
				"CREATE INDEX idx_slots_status ON slots (status)"
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
		collection, err := app.FindCollectionByNameOrId("pbc_slots_000001")
		if err != nil {
			return err
		}

		return app.Delete(collection)
	})
}
