// Package dispatch — маршрутизация task на зарегистрированные node.
//
// Диспетчер держит приоритетную очередь, пул воркеров и историю
// результатов. Выбор node — round-robin среди активных с нужной
// capability. Повторы на этом уровне не выполняются.
package dispatch
