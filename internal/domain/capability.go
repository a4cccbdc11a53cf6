package domain

// CapabilityType — категория действий, которые умеет выполнять node.
//
// Task диспетчеризуется только на node с совпадающим capability type.
// Различия в поведении живут целиком в удалённом сервисе — ядро
// не имеет иерархии типов per-capability.
type CapabilityType string

// Известные capability types.
const (
	CapabilityBusiness  CapabilityType = "business"
	CapabilityJob       CapabilityType = "job"
	CapabilityDeveloper CapabilityType = "developer"
	CapabilityCreative  CapabilityType = "creative"
	CapabilityDocuhand  CapabilityType = "docuhand"
	CapabilitySync      CapabilityType = "sync"
	CapabilityFibonrose CapabilityType = "fibonrose"
)

// validCapabilities — допустимые значения CapabilityType.
var validCapabilities = map[CapabilityType]bool{
	CapabilityBusiness:  true,
	CapabilityJob:       true,
	CapabilityDeveloper: true,
	CapabilityCreative:  true,
	CapabilityDocuhand:  true,
	CapabilitySync:      true,
	CapabilityFibonrose: true,
}

// IsValid проверяет, является ли capability type известным.
func (c CapabilityType) IsValid() bool {
	return validCapabilities[c]
}

// String возвращает строковое представление CapabilityType.
func (c CapabilityType) String() string {
	return string(c)
}
