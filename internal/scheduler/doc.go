// Package scheduler — периодические запуски pathway и слежение
// за живостью nodes.
//
// Schedule встраивает определение pathway целиком и задаёт время
// либо cron-выражением, либо фиксированным интервалом. Liveness
// sweep переводит молчащие nodes в inactive, выводя их из ротации
// диспетчера.
package scheduler
