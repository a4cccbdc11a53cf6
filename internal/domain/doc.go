// Package domain содержит модели данных Dirigent.
//
// Здесь определены:
//   - Node, CapabilityType — зарегистрированные worker-сервисы
//   - Task, TaskResult — единицы работы и их результаты
//   - Pathway, PathwayStep, ExecutionContext — многошаговые workflow
//   - Schedule — периодические запуски pathways
//
// Пакет не содержит логики координации — только типы, статусы
// и простые методы над ними.
package domain
