package migrations

import (
	"encoding/json"

	"github.com/pocketbase/pocketbase/core"
	m "github.com/pocketbase/pocketbase/migrations"
)

func init() {
	m.Register(func(app core.App) error {
		jsonData := `{
			"id": "pbc_turfs_000001",
			"name": "turfs",
			"type": "base",
			"system": false,
			"fields": [
				{
					"id": "text_slug",
					"name": "slug",
					"type": "text",
					"required": true,
					"presentable": true,
					"hidden": false,
					"system": false,
					"min": 0,
					"max": 0,
					"pattern": "^[a-z0-9-]+$"
				},
				{
					"id": "text_name",
					"name": "name",
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
					"id": "text_description",
					"name": "description",
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
					"id": "text_owner_id",
					"name": "owner_id",
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
					"id": "number_base_price",
					"name": "base_price",
					"type": "number",
					"required": false,
					"presentable": false,
					"hidden": false,
					"system": false,
					"onlyInt": true,
					"min": null,
					"max": null
				},
				{
					"id": "json_amenities",
					"name": "amenities",
					"type": "json",
					"required": false,
					"presentable": false,
					"hidden": false,
					"system": false,
					"maxSize": 2000000
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
				"CREATE UNIQUE INDEX idx_turfs_slug ON turfs (slug)"
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
		collection, err := app.FindCollectionByNameOrId("pbc_turfs_000001")
		if err != nil {
			return err
		}

		return app.Delete(collection)
	})
}
