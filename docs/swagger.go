// Package docs Tilequery Overlay API.
//
// Сервис оверлея точек интереса. Выполняет точечно-радиусные запросы Mapbox Tilequery
// по начальной позиции устройства и по тапам и отдаёт рендереру фичи последнего
// применённого ответа.
//
// Основные возможности:
// - Состояние разрешения на геолокацию и его переходы
// - Приём позиций устройства (HTTP, Redis Streams, MQTT)
// - Оверлей по HTTP (обёртка и чистый GeoJSON) и WebSocket
// - Журнал запросов Tilequery
//
//	Schemes: http, https
//	BasePath: /
//	Version: 1.0.0
//
//	Consumes:
//	- application/json
//
//	Produces:
//	- application/json
//	- application/geo+json
//
// swagger:meta
package docs
