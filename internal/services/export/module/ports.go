package module

import dom "historian/internal/services/export/domain"

// Ports holds the ports exposed by the export module
type Ports struct {
	Exports dom.ManagerPort
}
