// Package events — публикация событий жизненного цикла в RabbitMQ.
//
// События (регистрация node, завершение task и pathway) уходят в
// topic-exchanges для внешних подписчиков: аудита, нотификаций,
// интеграций. Публикация необязательна: без MQ_URL публикатор nil
// и все вызовы — no-op.
package events
