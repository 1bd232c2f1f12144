package config

// PresetSchema is the JSON Schema every preset file must satisfy
const PresetSchema = `{
  "$schema": "http://json-schema.org/draft-07/schema#",
  "type": "object",
  "required": ["name", "description", "grid_size", "difficulty"],
  "additionalProperties": false,
  "properties": {
    "name": {
      "type": "string",
      "minLength": 1
    },
    "description": {
      "type": "string",
      "minLength": 1
    },
    "grid_size": {
      "type": "integer",
      "minimum": 2,
      "maximum": 50
    },
    "difficulty": {
      "type": "string",
      "enum": ["easy", "medium", "hard"]
    },
    "seed": {
      "type": "integer"
    },
    "layout": {
      "type": "array",
      "minItems": 2,
      "maxItems": 50,
      "items": {
        "type": "string",
        "pattern": "^[0-9]{2,50}$"
      }
    }
  }
}`
