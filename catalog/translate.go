package catalog

import (
	"encoding/json"

	"github.com/craftstudio/craftstudio-mcp/internal/logging"
	"github.com/craftstudio/craftstudio-mcp/schema"
)

// ContextProperty is the name of the injected project reference
// parameter. Only an exact name match counts as "already declared";
// divergent names like appId are not deduplicated.
const ContextProperty = "projectId"

const contextPropertyDescription = "ID of the project to operate on. Call project_LIST to discover valid project IDs."

// Action is the backend-native description of one invocable action.
type Action struct {
	Name        string          `json:"name"`
	Description string          `json:"description"`
	Parameters  json.RawMessage `json:"parameters"`
}

// Catalog is the backend's action catalog, grouped by category.
type Catalog map[Category][]Action

// Tool is the externally visible form of an Action.
type Tool struct {
	Name        string
	Title       string
	Description string
	InputSchema *schema.Object
}

// Translate flattens a catalog into tool descriptors. Each entry is
// derived independently: the additionalProperties flag is stripped, and
// categories that require a project reference get the projectId
// parameter injected first unless the backend already declared one.
//
// Categories are emitted in stable order, actions in catalog order.
// Actions whose parameter schema fails to parse are skipped rather than
// failing the whole listing.
func Translate(c Catalog) []Tool {
	var tools []Tool
	for _, category := range Categories() {
		for _, action := range c[category] {
			tool, err := translateAction(category, action)
			if err != nil {
				logging.Logger().Warn("skipping action with malformed schema",
					"category", string(category), "action", action.Name, "error", err)
				continue
			}
			tools = append(tools, tool)
		}
	}
	return tools
}

func translateAction(category Category, action Action) (Tool, error) {
	obj, err := schema.ParseObject(action.Parameters)
	if err != nil {
		return Tool{}, err
	}

	// The closed-schema flag never leaves the gateway.
	obj.AdditionalProperties = nil

	if RequiresContextID(category) && !obj.HasProperty(ContextProperty) {
		obj.Prepend(ContextProperty, schema.StringProperty(contextPropertyDescription))
	}

	return Tool{
		Name:        ToolName(category, action.Name),
		Title:       Title(action.Name),
		Description: action.Description,
		InputSchema: obj,
	}, nil
}
