package notify

import "fmt"

// NATS subject patterns
const (
	SubjectPrefix = "matrix"

	SubjectCellStatus = "matrix.cells.%d.%d.status" // hospital_id, item_id
	SubjectCellPVA    = "matrix.cells.%d.%d.pva"    // hospital_id, item_id
	SubjectRegistry   = "matrix.registry.%s"        // hospital | capacity | service | system
	SubjectRefresh    = "matrix.refresh"

	SubjectCellsAll = "matrix.cells.>"
)

func CellStatusSubject(hospitalID, itemID int64) string {
	return fmt.Sprintf(SubjectCellStatus, hospitalID, itemID)
}

func CellPVASubject(hospitalID, itemID int64) string {
	return fmt.Sprintf(SubjectCellPVA, hospitalID, itemID)
}

func RegistrySubject(kind string) string {
	return fmt.Sprintf(SubjectRegistry, kind)
}
