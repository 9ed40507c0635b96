package handlers

import (
	"encoding/json"
	"net/http"
)

// OpenAPISpec serves the OpenAPI specification for the comfort API
func OpenAPISpec(w http.ResponseWriter, r *http.Request) {
	spec := map[string]interface{}{
		"openapi": "3.0.0",
		"info": map[string]interface{}{
			"title":       "Comfort Platform API",
			"description": "REST API for adaptive thermal comfort analysis runs, hourly classifications, and monthly KPI summaries",
			"version":     "1.0.0",
		},
		"servers": []map[string]interface{}{
			{"url": "/", "description": "Current server"},
		},
		"paths": map[string]interface{}{
			"/health": map[string]interface{}{
				"get": map[string]interface{}{
					"summary":     "Health check",
					"description": "Returns service health status including database connectivity",
					"tags":        []string{"System"},
					"responses": map[string]interface{}{
						"200": map[string]interface{}{
							"description": "Service is healthy",
						},
						"503": map[string]interface{}{
							"description": "Service is degraded",
						},
					},
				},
			},
			"/api/runs": map[string]interface{}{
				"get": map[string]interface{}{
					"summary":     "List analysis runs",
					"description": "Returns stored analysis runs, newest first, with pagination",
					"tags":        []string{"Runs"},
					"parameters": []map[string]interface{}{
						{
							"name":        "page",
							"in":          "query",
							"description": "Page number (default 1)",
							"schema":      map[string]interface{}{"type": "integer", "default": 1},
						},
						{
							"name":        "limit",
							"in":          "query",
							"description": "Results per page (default 100, max 1000)",
							"schema":      map[string]interface{}{"type": "integer", "default": 100},
						},
					},
					"responses": map[string]interface{}{
						"200": map[string]interface{}{
							"description": "Paginated list of analysis runs",
							"content": map[string]interface{}{
								"application/json": map[string]interface{}{
									"schema": map[string]interface{}{
										"$ref": "#/components/schemas/PaginatedRuns",
									},
								},
							},
						},
					},
				},
			},
			"/api/runs/{id}": map[string]interface{}{
				"get": map[string]interface{}{
					"summary":     "Get an analysis run",
					"description": "Returns one analysis run with its parameters and aggregate figures",
					"tags":        []string{"Runs"},
					"parameters": []map[string]interface{}{
						{
							"name":     "id",
							"in":       "path",
							"required": true,
							"schema":   map[string]interface{}{"type": "string", "format": "uuid"},
						},
					},
					"responses": map[string]interface{}{
						"200": map[string]interface{}{
							"description": "The analysis run",
							"content": map[string]interface{}{
								"application/json": map[string]interface{}{
									"schema": map[string]interface{}{
										"$ref": "#/components/schemas/AnalysisRun",
									},
								},
							},
						},
						"404": map[string]interface{}{
							"description": "Run not found",
						},
					},
				},
			},
			"/api/runs/{id}/hourly": map[string]interface{}{
				"get": map[string]interface{}{
					"summary":     "Get hourly classification results",
					"description": "Returns the classified hours of a run with optional time filtering and pagination",
					"tags":        []string{"Results"},
					"parameters": []map[string]interface{}{
						{
							"name":     "id",
							"in":       "path",
							"required": true,
							"schema":   map[string]interface{}{"type": "string", "format": "uuid"},
						},
						{
							"name":        "start",
							"in":          "query",
							"description": "Start of time range (RFC 3339 or YYYY-MM-DD)",
							"schema":      map[string]interface{}{"type": "string"},
						},
						{
							"name":        "end",
							"in":          "query",
							"description": "End of time range (RFC 3339 or YYYY-MM-DD)",
							"schema":      map[string]interface{}{"type": "string"},
						},
						{
							"name":   "page",
							"in":     "query",
							"schema": map[string]interface{}{"type": "integer", "default": 1},
						},
						{
							"name":   "limit",
							"in":     "query",
							"schema": map[string]interface{}{"type": "integer", "default": 100},
						},
					},
					"responses": map[string]interface{}{
						"200": map[string]interface{}{
							"description": "Paginated classified hours",
						},
						"400": map[string]interface{}{
							"description": "Invalid run ID or time parameter",
						},
					},
				},
			},
			"/api/runs/{id}/monthly": map[string]interface{}{
				"get": map[string]interface{}{
					"summary":     "Get monthly comfort summaries",
					"description": "Returns the monthly KPI rows of a run in chronological order",
					"tags":        []string{"Results"},
					"parameters": []map[string]interface{}{
						{
							"name":     "id",
							"in":       "path",
							"required": true,
							"schema":   map[string]interface{}{"type": "string", "format": "uuid"},
						},
					},
					"responses": map[string]interface{}{
						"200": map[string]interface{}{
							"description": "Monthly summary rows",
							"content": map[string]interface{}{
								"application/json": map[string]interface{}{
									"schema": map[string]interface{}{
										"type":  "array",
										"items": map[string]interface{}{"$ref": "#/components/schemas/MonthlySummary"},
									},
								},
							},
						},
					},
				},
			},
		},
		"components": map[string]interface{}{
			"schemas": map[string]interface{}{
				"AnalysisRun": map[string]interface{}{
					"type": "object",
					"properties": map[string]interface{}{
						"run_id":             map[string]interface{}{"type": "string", "format": "uuid"},
						"source_file":        map[string]interface{}{"type": "string"},
						"alpha":              map[string]interface{}{"type": "number", "description": "Running mean smoothing constant"},
						"comfort_slope":      map[string]interface{}{"type": "number"},
						"comfort_intercept":  map[string]interface{}{"type": "number"},
						"deadband":           map[string]interface{}{"type": "number", "description": "Half-width of the comfort band in degrees C"},
						"total_hours":        map[string]interface{}{"type": "integer"},
						"comfort_hours":      map[string]interface{}{"type": "integer"},
						"comfort_pct":        map[string]interface{}{"type": "number"},
						"unclassified_hours": map[string]interface{}{"type": "integer"},
						"created_at":         map[string]interface{}{"type": "string", "format": "date-time"},
					},
				},
				"ClassifiedHour": map[string]interface{}{
					"type": "object",
					"properties": map[string]interface{}{
						"timestamp":      map[string]interface{}{"type": "string", "format": "date-time"},
						"operative":      map[string]interface{}{"type": "number", "description": "Indoor operative temperature in degrees C"},
						"outdoor":        map[string]interface{}{"type": "number"},
						"running_mean":   map[string]interface{}{"type": "number", "nullable": true},
						"comfort_temp":   map[string]interface{}{"type": "number", "nullable": true},
						"limit_low":      map[string]interface{}{"type": "number", "nullable": true},
						"limit_high":     map[string]interface{}{"type": "number", "nullable": true},
						"state":          map[string]interface{}{"type": "string", "enum": []string{"comfortable", "too_cold", "too_warm", "unknown"}},
						"comfort_hour":   map[string]interface{}{"type": "integer"},
						"discomfort_hour": map[string]interface{}{"type": "integer"},
					},
				},
				"MonthlySummary": map[string]interface{}{
					"type": "object",
					"properties": map[string]interface{}{
						"month":            map[string]interface{}{"type": "string", "format": "date-time"},
						"total_hours":      map[string]interface{}{"type": "integer"},
						"comfort_hours":    map[string]interface{}{"type": "integer"},
						"discomfort_hours": map[string]interface{}{"type": "integer"},
						"too_warm_hours":   map[string]interface{}{"type": "integer"},
						"too_cold_hours":   map[string]interface{}{"type": "integer"},
						"mean_operative":   map[string]interface{}{"type": "number"},
						"comfort_pct":      map[string]interface{}{"type": "number"},
					},
				},
				"PaginatedRuns": map[string]interface{}{
					"type": "object",
					"properties": map[string]interface{}{
						"data": map[string]interface{}{
							"type":  "array",
							"items": map[string]interface{}{"$ref": "#/components/schemas/AnalysisRun"},
						},
						"total":       map[string]interface{}{"type": "integer"},
						"page":        map[string]interface{}{"type": "integer"},
						"limit":       map[string]interface{}{"type": "integer"},
						"total_pages": map[string]interface{}{"type": "integer"},
					},
				},
			},
		},
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(spec)
}
