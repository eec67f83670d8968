package server

// Tool represents an MCP tool definition
type Tool struct {
	Name        string                 `json:"name"`
	Description string                 `json:"description"`
	InputSchema map[string]interface{} `json:"inputSchema"`
}

func pathProperty() map[string]interface{} {
	return map[string]interface{}{
		"type":        "string",
		"description": "Absolute path to the image file",
	}
}

// boxProperties returns the x1/y1/x2/y2 properties of a region argument.
func boxProperties() map[string]interface{} {
	return map[string]interface{}{
		"path": pathProperty(),
		"x1": map[string]interface{}{
			"type":        "integer",
			"description": "Left edge X coordinate (0-based)",
		},
		"y1": map[string]interface{}{
			"type":        "integer",
			"description": "Top edge Y coordinate (0-based)",
		},
		"x2": map[string]interface{}{
			"type":        "integer",
			"description": "Right edge X coordinate (exclusive)",
		},
		"y2": map[string]interface{}{
			"type":        "integer",
			"description": "Bottom edge Y coordinate (exclusive)",
		},
	}
}

// GetToolDefinitions returns all available tools
func GetToolDefinitions() []Tool {
	return []Tool{
		// Basic Image Information
		{
			Name:        "image_load",
			Description: "Load an image file and return its dimensions, format and file size.",
			InputSchema: map[string]interface{}{
				"type": "object",
				"properties": map[string]interface{}{
					"path": pathProperty(),
				},
				"required": []string{"path"},
			},
		},
		{
			Name:        "image_dimensions",
			Description: "Get the width and height of an image file.",
			InputSchema: map[string]interface{}{
				"type": "object",
				"properties": map[string]interface{}{
					"path": pathProperty(),
				},
				"required": []string{"path"},
			},
		},

		// Detection
		{
			Name:        "shapes_detect",
			Description: "Detect colored shapes in an image. Returns each object's bounding box, center, area, color name and shape name with confidences.",
			InputSchema: map[string]interface{}{
				"type": "object",
				"properties": map[string]interface{}{
					"path": pathProperty(),
					"max_objects": map[string]interface{}{
						"type":        "integer",
						"description": "Keep only the first N regions (0 = no limit)",
					},
					"confidence_threshold": map[string]interface{}{
						"type":        "number",
						"description": "Drop objects whose color confidence is below this value (0-1)",
					},
					"max_width": map[string]interface{}{
						"type":        "integer",
						"description": "Downscale wider images to this width before detection",
					},
					"navigate": map[string]interface{}{
						"type":        "boolean",
						"description": "Also return navigation advice for the frame",
						"default":     false,
					},
				},
				"required": []string{"path"},
			},
		},
		{
			Name:        "shapes_preprocess",
			Description: "Return the binary foreground mask the detector extracts regions from, as a base64 PNG. Useful for tuning threshold and kernel sizes.",
			InputSchema: map[string]interface{}{
				"type": "object",
				"properties": map[string]interface{}{
					"path": pathProperty(),
				},
				"required": []string{"path"},
			},
		},
		{
			Name:        "shapes_classify_color",
			Description: "Classify the dominant color inside a rectangular region.",
			InputSchema: map[string]interface{}{
				"type":       "object",
				"properties": boxProperties(),
				"required":   []string{"path", "x1", "y1", "x2", "y2"},
			},
		},
		{
			Name:        "shapes_classify_shape",
			Description: "Find the largest object inside a rectangular region and classify its shape and color.",
			InputSchema: map[string]interface{}{
				"type":       "object",
				"properties": boxProperties(),
				"required":   []string{"path", "x1", "y1", "x2", "y2"},
			},
		},
		{
			Name:        "shapes_annotate",
			Description: "Detect shapes and return the image with boxes, labels and center markers drawn, as a base64 PNG.",
			InputSchema: map[string]interface{}{
				"type": "object",
				"properties": map[string]interface{}{
					"path": pathProperty(),
					"show_boundary": map[string]interface{}{
						"type":        "boolean",
						"description": "Draw each object's traced outline",
						"default":     false,
					},
					"show_zones": map[string]interface{}{
						"type":        "boolean",
						"description": "Draw the 5x3 navigation grid",
						"default":     false,
					},
					"zone_color": map[string]interface{}{
						"type":        "string",
						"description": "Hex color for the navigation grid (e.g., '#FFFF00')",
						"default":     "#FFFF00",
					},
				},
				"required": []string{"path"},
			},
		},
		{
			Name:        "shapes_navigate",
			Description: "Detect shapes and describe obstacles by zone with walking advice and warnings.",
			InputSchema: map[string]interface{}{
				"type": "object",
				"properties": map[string]interface{}{
					"path": pathProperty(),
				},
				"required": []string{"path"},
			},
		},

		// OCR
		{
			Name:        "shapes_read_label",
			Description: "Read printed text inside detected objects using OCR. Requires Tesseract to be installed.",
			InputSchema: map[string]interface{}{
				"type": "object",
				"properties": map[string]interface{}{
					"path": pathProperty(),
					"object_id": map[string]interface{}{
						"type":        "integer",
						"description": "Read only this object (index from shapes_detect). Omit to read all.",
					},
					"language": map[string]interface{}{
						"type":        "string",
						"description": "Tesseract language code. Default from server configuration.",
					},
				},
				"required": []string{"path"},
			},
		},

		// Configuration
		{
			Name:        "shapes_get_config",
			Description: "Return the detection parameters, limits and supported color and shape names.",
			InputSchema: map[string]interface{}{
				"type":       "object",
				"properties": map[string]interface{}{},
			},
		},
		{
			Name:        "shapes_set_config",
			Description: "Update detection parameters. Only the given fields change; invalid values are rejected and nothing is applied.",
			InputSchema: map[string]interface{}{
				"type": "object",
				"properties": map[string]interface{}{
					"min_contour_area": map[string]interface{}{
						"type":        "number",
						"description": "Smallest admitted region area in square pixels",
					},
					"max_contour_area": map[string]interface{}{
						"type":        "number",
						"description": "Largest admitted region area in square pixels",
					},
					"blur_kernel_size": map[string]interface{}{
						"type":        "integer",
						"description": "Gaussian blur kernel size (rounded up to odd)",
					},
					"morph_kernel_size": map[string]interface{}{
						"type":        "integer",
						"description": "Morphological opening kernel size (rounded up to odd)",
					},
					"threshold": map[string]interface{}{
						"type":        "integer",
						"description": "Binarization level 0-255",
					},
					"workers": map[string]interface{}{
						"type":        "integer",
						"description": "Goroutines used for per-object classification",
					},
				},
			},
		},
		{
			Name:        "shapes_add_color",
			Description: "Add or replace a named color. Ranges use hue 0-180 and saturation/value 0-255.",
			InputSchema: map[string]interface{}{
				"type": "object",
				"properties": map[string]interface{}{
					"name": map[string]interface{}{
						"type":        "string",
						"description": "Color name (lowercased)",
					},
					"lower": map[string]interface{}{
						"type":        "array",
						"items":       map[string]interface{}{"type": "integer"},
						"description": "Lower HSV bound [h, s, v]",
					},
					"upper": map[string]interface{}{
						"type":        "array",
						"items":       map[string]interface{}{"type": "integer"},
						"description": "Upper HSV bound [h, s, v]",
					},
					"rgb": map[string]interface{}{
						"type":        "array",
						"items":       map[string]interface{}{"type": "integer"},
						"description": "Display color [r, g, b]",
					},
				},
				"required": []string{"name", "lower", "upper", "rgb"},
			},
		},
	}
}

// handleToolsList returns the list of available tools
func (s *Server) handleToolsList(req *MCPRequest) *MCPResponse {
	return &MCPResponse{
		JSONRPC: "2.0",
		ID:      req.ID,
		Result: map[string]interface{}{
			"tools": GetToolDefinitions(),
		},
	}
}
