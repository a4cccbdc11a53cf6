// Package node — runtime worker node: HTTP-поверхность вызова,
// реестр обработчиков action и саморегистрация в ядре с heartbeat.
//
// Встроенные наборы обработчиков (business, job, developer) покрывают
// стандартные capability; остальные типы наполняются вызывающим.
package node
