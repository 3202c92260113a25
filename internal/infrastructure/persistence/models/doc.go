// Package models contains the GORM persistence models.
//
// Models are separate from domain entities: value objects such as Money and Presence
// are flattened into columns and child rows here, and rebuilt by ToDomain.
// Every model has FromDomain/ToDomain and an explicit TableName.
package models
