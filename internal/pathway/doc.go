// Package pathway — исполнение многошаговых последовательностей.
//
// Sequential-режим несёт payload через шаги, вливая результаты
// и проверяя условия; parallel-режим запускает шаги против
// независимых копий. Retry шагов живёт здесь, а не в диспетчере.
package pathway
