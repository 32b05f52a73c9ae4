package assets

// Content schemas are JSON Schema 2020-12 documents keyed by asset type.
// Extra properties are allowed everywhere; the schemas pin the fields code reads.
var contentSchemas = map[Type]string{
	TypeDocument: `{
		"type": "object",
		"required": ["file_name", "blob_name"],
		"properties": {
			"file_name": {"type": "string", "minLength": 1},
			"blob_name": {"type": "string", "minLength": 1},
			"content_type": {"type": "string"},
			"size": {"type": "integer", "minimum": 0},
			"source": {"type": "string"}
		}
	}`,
	TypeDrawing: `{
		"type": "object",
		"properties": {
			"drawing_number": {"type": "string"},
			"sheet": {"type": "string"},
			"blob_name": {"type": "string"}
		}
	}`,
	TypeLot: `{
		"type": "object",
		"properties": {
			"work_type": {"type": "string"},
			"description": {"type": "string"},
			"wbs_node": {"type": "string"},
			"lbs_node": {"type": "string"},
			"area_code": {"type": "string"},
			"chainage_start": {"type": "number"},
			"chainage_end": {"type": "number"}
		}
	}`,
	TypeITPTemplate: `{
		"type": "object",
		"required": ["title"],
		"properties": {
			"title": {"type": "string", "minLength": 1},
			"work_type": {"type": "string"},
			"items": {
				"type": "array",
				"items": {
					"type": "object",
					"required": ["description"],
					"properties": {
						"description": {"type": "string", "minLength": 1},
						"acceptance_criteria": {"type": "string"},
						"hold_point": {"type": "boolean"}
					}
				}
			}
		}
	}`,
	TypeITPDocument: `{
		"type": "object",
		"required": ["title"],
		"properties": {
			"title": {"type": "string", "minLength": 1},
			"wbs_node": {"type": "string"},
			"lbs_node": {"type": "string"},
			"template_id": {"type": "string"},
			"item_count": {"type": "integer", "minimum": 0},
			"completed_items": {"type": "integer", "minimum": 0}
		}
	}`,
	TypeInspectionPoint: `{
		"type": "object",
		"required": ["description"],
		"properties": {
			"description": {"type": "string", "minLength": 1},
			"hold_point": {"type": "boolean"},
			"witness_point": {"type": "boolean"},
			"lot_id": {"type": "string"}
		}
	}`,
	TypeSample: `{
		"type": "object",
		"required": ["sample_type"],
		"properties": {
			"sample_type": {"type": "string", "minLength": 1},
			"location": {"type": "string"},
			"taken_at": {"type": "string"},
			"lab": {"type": "string"}
		}
	}`,
	TypeTestResult: `{
		"type": "object",
		"required": ["test_method", "result"],
		"properties": {
			"test_method": {"type": "string", "minLength": 1},
			"result": {"type": ["string", "number"]},
			"pass": {"type": "boolean"},
			"sample_id": {"type": "string"}
		}
	}`,
	TypePhoto: `{
		"type": "object",
		"required": ["blob_name"],
		"properties": {
			"blob_name": {"type": "string", "minLength": 1},
			"caption": {"type": "string"},
			"taken_at": {"type": "string"},
			"latitude": {"type": "number", "minimum": -90, "maximum": 90},
			"longitude": {"type": "number", "minimum": -180, "maximum": 180}
		}
	}`,
	TypeWBSNode: `{
		"type": "object",
		"required": ["code", "title"],
		"properties": {
			"code": {"type": "string", "minLength": 1},
			"title": {"type": "string", "minLength": 1}
		}
	}`,
	TypeLBSNode: `{
		"type": "object",
		"required": ["code", "title"],
		"properties": {
			"code": {"type": "string", "minLength": 1},
			"title": {"type": "string", "minLength": 1}
		}
	}`,
	TypeAreaCode: `{
		"type": "object",
		"required": ["code"],
		"properties": {
			"code": {"type": "string", "minLength": 1},
			"description": {"type": "string"}
		}
	}`,
	TypeTimesheet: `{
		"type": "object",
		"required": ["user_id", "hours"],
		"properties": {
			"user_id": {"type": "string", "minLength": 1},
			"hours": {"type": "number", "exclusiveMinimum": 0, "maximum": 24},
			"date": {"type": "string"},
			"notes": {"type": "string"},
			"lot_id": {"type": "string"}
		}
	}`,
	TypeDailyDiary: `{
		"type": "object",
		"required": ["date"],
		"properties": {
			"date": {"type": "string", "minLength": 1},
			"weather": {"type": "string"},
			"notes": {"type": "string"},
			"workforce_count": {"type": "integer", "minimum": 0}
		}
	}`,
	TypeSiteInstruction: `{
		"type": "object",
		"required": ["title"],
		"properties": {
			"title": {"type": "string", "minLength": 1},
			"description": {"type": "string"},
			"issued_to": {"type": "string"},
			"due_date": {"type": "string"}
		}
	}`,
	TypePlant: `{
		"type": "object",
		"required": ["name"],
		"properties": {
			"name": {"type": "string", "minLength": 1},
			"registration": {"type": "string"},
			"operator": {"type": "string"},
			"hours": {"type": "number", "minimum": 0}
		}
	}`,
	TypeRosterEntry: `{
		"type": "object",
		"required": ["user_id", "date"],
		"properties": {
			"user_id": {"type": "string", "minLength": 1},
			"date": {"type": "string", "minLength": 1},
			"shift": {"type": "string"}
		}
	}`,
	TypeNCR: `{
		"type": "object",
		"required": ["title"],
		"properties": {
			"title": {"type": "string", "minLength": 1},
			"description": {"type": "string"},
			"severity": {"enum": ["minor", "major", "critical"]},
			"lot_id": {"type": "string"}
		}
	}`,
	TypeApprovalWorkflow: `{
		"type": "object",
		"required": ["target_asset_id"],
		"properties": {
			"target_asset_id": {"type": "string", "minLength": 1},
			"title": {"type": "string"},
			"approvers": {"type": "array", "items": {"type": "string"}},
			"comment": {"type": "string"}
		}
	}`,
	TypeQSEDocument: `{
		"type": "object",
		"required": ["title"],
		"properties": {
			"title": {"type": "string", "minLength": 1},
			"category": {"type": "string"},
			"clause": {"type": "string"}
		}
	}`,
	TypeAttachment: `{
		"type": "object",
		"required": ["blob_name", "file_name"],
		"properties": {
			"blob_name": {"type": "string", "minLength": 1},
			"file_name": {"type": "string", "minLength": 1},
			"content_type": {"type": "string"},
			"row_id": {"type": "string"}
		}
	}`,
}

const decisionPropertiesSchema = `{
	"type": "object",
	"required": ["decided_by"],
	"properties": {
		"decided_by": {"type": "string", "minLength": 1},
		"comment": {"type": "string"},
		"decided_at": {"type": "string"}
	}
}`

const chainagePropertiesSchema = `{
	"type": "object",
	"properties": {
		"chainage_start": {"type": "number"},
		"chainage_end": {"type": "number"}
	}
}`

var propertySchemas = map[EdgeType]string{
	EdgeApprovedBy: decisionPropertiesSchema,
	EdgeReviewedBy: decisionPropertiesSchema,
	EdgeOutputOf: `{
		"type": "object",
		"properties": {
			"run_id": {"type": "string"},
			"model": {"type": "string"},
			"confidence": {"type": "number", "minimum": 0, "maximum": 1}
		}
	}`,
	EdgeParentOf: `{
		"type": "object",
		"properties": {
			"ordinal": {"type": "integer", "minimum": 0}
		}
	}`,
	EdgeLocatedInLBS: chainagePropertiesSchema,
	EdgeCoversWBS:    chainagePropertiesSchema,
	EdgeReferences: `{
		"type": "object",
		"properties": {
			"reference_type": {"type": "string", "minLength": 1},
			"row_id": {"type": "string"}
		}
	}`,
	EdgeSupersedes: `{
		"type": "object",
		"properties": {
			"commit_message": {"type": "string"},
			"created_by": {"type": "string"}
		}
	}`,
}

const objectSchema = `{"type": "object"}`
