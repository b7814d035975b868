package catalog

import (
	ierr "github.com/neexbeast/flysen-catalog/internal/errors"
)

func invalidEnum(kind, label string) error {
	return ierr.NewError("invalid "+kind).
		WithHintf("%q is not a valid %s", label, kind).
		Mark(ierr.ErrInvalidEnum)
}

// EventType classifies an event.
type EventType string

const (
	EventTypeFestival   EventType = "FESTIVAL"
	EventTypeConcert    EventType = "CONCERT"
	EventTypeConference EventType = "CONFERENCE"
	EventTypeSports     EventType = "SPORTS"
	EventTypeExhibition EventType = "EXHIBITION"
	EventTypeCultural   EventType = "CULTURAL"
	EventTypeReligious  EventType = "RELIGIOUS"
	EventTypeFoodWine   EventType = "FOOD_WINE"
	EventTypeNightlife  EventType = "NIGHTLIFE"
	EventTypeOther      EventType = "OTHER"
)

func ParseEventType(label string) (EventType, error) {
	switch t := EventType(label); t {
	case EventTypeFestival, EventTypeConcert, EventTypeConference, EventTypeSports,
		EventTypeExhibition, EventTypeCultural, EventTypeReligious, EventTypeFoodWine,
		EventTypeNightlife, EventTypeOther:
		return t, nil
	default:
		return "", invalidEnum("event type", label)
	}
}

// EventStatus is the lifecycle state of an event.
type EventStatus string

const (
	EventStatusScheduled EventStatus = "SCHEDULED"
	EventStatusOngoing   EventStatus = "ONGOING"
	EventStatusCompleted EventStatus = "COMPLETED"
	EventStatusCancelled EventStatus = "CANCELLED"
	EventStatusPostponed EventStatus = "POSTPONED"
)

func ParseEventStatus(label string) (EventStatus, error) {
	switch s := EventStatus(label); s {
	case EventStatusScheduled, EventStatusOngoing, EventStatusCompleted,
		EventStatusCancelled, EventStatusPostponed:
		return s, nil
	default:
		return "", invalidEnum("event status", label)
	}
}

// ServiceCategory groups airport services.
type ServiceCategory string

const (
	CategoryRestaurant       ServiceCategory = "RESTAURANT"
	CategoryCafe             ServiceCategory = "CAFE"
	CategoryDutyFree         ServiceCategory = "DUTY_FREE"
	CategoryRetail           ServiceCategory = "RETAIL"
	CategoryLounge           ServiceCategory = "LOUNGE"
	CategoryBankATM          ServiceCategory = "BANK_ATM"
	CategoryCurrencyExchange ServiceCategory = "CURRENCY_EXCHANGE"
	CategoryInformationDesk  ServiceCategory = "INFORMATION_DESK"
	CategoryBaggageServices  ServiceCategory = "BAGGAGE_SERVICES"
	CategoryCarRental        ServiceCategory = "CAR_RENTAL"
	CategoryPharmacy         ServiceCategory = "PHARMACY"
	CategorySpaWellness      ServiceCategory = "SPA_WELLNESS"
	CategoryBusinessCenter   ServiceCategory = "BUSINESS_CENTER"
	CategoryChargingStation  ServiceCategory = "CHARGING_STATION"
	CategoryWifiZone         ServiceCategory = "WIFI_ZONE"
	CategoryPrayerRoom       ServiceCategory = "PRAYER_ROOM"
	CategoryMedicalCenter    ServiceCategory = "MEDICAL_CENTER"
	CategoryLostAndFound     ServiceCategory = "LOST_AND_FOUND"
	CategoryCustoms          ServiceCategory = "CUSTOMS"
	CategoryImmigration      ServiceCategory = "IMMIGRATION"
	CategorySecurity         ServiceCategory = "SECURITY"
	CategoryVIPServices      ServiceCategory = "VIP_SERVICES"
	CategoryHotel            ServiceCategory = "HOTEL"
	CategoryTransportation   ServiceCategory = "TRANSPORTATION"
	CategoryOther            ServiceCategory = "OTHER"
)

func ParseServiceCategory(label string) (ServiceCategory, error) {
	switch c := ServiceCategory(label); c {
	case CategoryRestaurant, CategoryCafe, CategoryDutyFree, CategoryRetail, CategoryLounge,
		CategoryBankATM, CategoryCurrencyExchange, CategoryInformationDesk, CategoryBaggageServices,
		CategoryCarRental, CategoryPharmacy, CategorySpaWellness, CategoryBusinessCenter,
		CategoryChargingStation, CategoryWifiZone, CategoryPrayerRoom, CategoryMedicalCenter,
		CategoryLostAndFound, CategoryCustoms, CategoryImmigration, CategorySecurity,
		CategoryVIPServices, CategoryHotel, CategoryTransportation, CategoryOther:
		return c, nil
	default:
		return "", invalidEnum("service category", label)
	}
}
