package domain

// Stage is one named phase of order fulfillment. The wire values match the
// estado strings the rest of the platform stores and displays.
type Stage string

const (
	StageProcessing     Stage = "procesando"
	StageInKitchen      Stage = "cocinando"
	StagePackaging      Stage = "empacando"
	StageOutForDelivery Stage = "enviando"
	StageReceived       Stage = "recibido"
)

// Valid reports whether s is one of the known fulfillment stages.
func (s Stage) Valid() bool {
	switch s {
	case StageProcessing, StageInKitchen, StagePackaging, StageOutForDelivery, StageReceived:
		return true
	}
	return false
}

// Result status tags returned to the workflow driver.
const (
	StatusEnCocina         = "EN_COCINA"
	StatusCocinaTerminada  = "COCINA_TERMINADA"
	StatusEmpaquetado      = "EMPAQUETADO"
	StatusDeliveryEnCurso  = "DELIVERY_EN_CURSO"
	StatusCompleted        = "COMPLETED"
	StatusRetrying         = "RETRYING"
	StatusRetryingDelivery = "RETRYING_DELIVERY"
)

// Employee identifiers recorded when a payload does not name one.
const (
	EmployeeKitchen     = "COCINA"
	EmployeePackaging   = "EMPAQUE"
	EmployeeDelivery    = "DELIVERY"
	EmployeeSystem      = "SYSTEM"
	EmployeeSystemRetry = "SYSTEM_RETRY"
)
