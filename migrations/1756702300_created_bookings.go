package migrations

import (
	"encoding/json"

	"github.com/pocketbase/pocketbase/core"
	m "github.com/pocketbase/pocketbase/migrations"
)

func init() {
	m.Register(func(app core.App) error {
		jsonData := `{
			"id": "pbc_bookings_0001",
			"name": "bookings",
			"type": "base",
			"system": false,
			"fields": [
				{
					"id": "text_slot_id",
					"name": "slot_id",
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
					"id": "text_user_id",
					"name": "user_id",
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
					"id": "text_gateway_session_id",
					"name": "gateway_session_id",
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
					"id": "number_amount",
					"name": "amount",
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
						"pending",
						"confirmed",
						"cancelled"
					]
				},
				{
					"id": "text_qr_secret",
					"name": "qr_secret",
					"type": "text",
					"required": true,
					"presentable": false,
					"hidden": true,
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
				"CREATE UNIQUE INDEX idx_bookings_qr_secret ON bookings (qr_secret)",
				"CREATE UNIQUE INDEX idx_bookings_session ON bookings (gateway_session_id) WHERE gateway_session_id != ''",
				"CREATE INDEX idx_bookings_status_created ON bookings (status, created)"
			],
			"listRule": null,
			"viewRule": null,
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
		collection, err := app.FindCollectionByNameOrId("pbc_bookings_0001")
		if err != nil {
			return err
		}

		return app.Delete(collection)
	})
}
