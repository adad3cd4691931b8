package main

import (
	"context"
	"errors"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/zerolog"

	"github.com/example/docverify-service/internal/assembler"
	"github.com/example/docverify-service/internal/collector"
	"github.com/example/docverify-service/internal/config"
	"github.com/example/docverify-service/internal/dispatch"
	"github.com/example/docverify-service/internal/extract"
	"github.com/example/docverify-service/internal/fetch"
	"github.com/example/docverify-service/internal/kafka/consumer"
	"github.com/example/docverify-service/internal/kafka/producer"
	kafkapublisher "github.com/example/docverify-service/internal/kafka/publisher"
	"github.com/example/docverify-service/internal/logger"
	"github.com/example/docverify-service/internal/router"
	"github.com/example/docverify-service/internal/worker"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	cfg, err := config.Load()
	if err != nil {
		fail("config load", err)
	}

	baseLogger, err := logger.New(cfg.App.Env, cfg.App.LogLevel)
	if err != nil {
		fail("logger init", err)
	}
	log := baseLogger.With().Str("service", "docverify-worker").Logger()

	prod, err := producer.New(cfg.Kafka.Brokers, log.With().Str("component", "kafka-producer").Logger())
	if err != nil {
		log.Fatal().Err(err).Msg("failed to create kafka producer")
	}
	defer func() {
		if err := prod.Close(); err != nil {
			log.Error().Err(err).Msg("failed to close kafka producer")
		}
	}()

	submitCons, err := consumer.New(cfg.Kafka.Brokers, cfg.ConsumerGroups.Submit, log.With().Str("component", "submit-consumer").Logger(), cfg.Kafka.CommitOnSuccessOnly)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to create submit consumer")
	}
	defer func() {
		if err := submitCons.Close(); err != nil {
			log.Error().Err(err).Msg("failed to close submit consumer")
		}
	}()

	replyCons, err := consumer.New(cfg.Kafka.Brokers, cfg.ConsumerGroups.Reply, log.With().Str("component", "reply-consumer").Logger(), cfg.Kafka.CommitOnSuccessOnly)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to create reply consumer")
	}
	defer func() {
		if err := replyCons.Close(); err != nil {
			log.Error().Err(err).Msg("failed to close reply consumer")
		}
	}()

	requestPublisher := kafkapublisher.NewRequestPublisher(prod, cfg.Topics.Request, log.With().Str("component", "request-publisher").Logger())
	if requestPublisher == nil {
		log.Fatal().Msg("failed to create request publisher")
	}
	routedPublisher := kafkapublisher.NewRoutedPublisher(prod, cfg.Topics.Verified, cfg.Topics.Failed, log.With().Str("component", "routed-publisher").Logger())
	if routedPublisher == nil {
		log.Fatal().Msg("failed to create routed publisher")
	}
	failurePublisher := kafkapublisher.NewFailureEventPublisher(prod, cfg.Topics.FailureEvents, log.With().Str("component", "failure-publisher").Logger())
	if failurePublisher == nil {
		log.Fatal().Msg("failed to create failure event publisher")
	}

	docs := collector.New(log.With().Str("component", "collector").Logger())
	fetcher := fetch.New(
		log.With().Str("component", "fetcher").Logger(),
		fetch.WithHTTPTimeout(time.Duration(cfg.Documents.FetchTimeoutSeconds)*time.Second),
	)

	asm, err := assembler.New(assembler.Config{
		Prompt:          cfg.Validation.Prompt,
		ExcerptMaxChars: cfg.Validation.ExcerptMaxChars,
	}, fetcher, extract.NewPDFExtractor(), log.With().Str("component", "assembler").Logger())
	if err != nil {
		log.Fatal().Err(err).Msg("failed to initialise assembler")
	}

	dsp, err := dispatch.New(dispatch.Config{
		RequestTopicBase: cfg.Destinations.RequestBase,
		ReplyTopicBase:   cfg.Destinations.ReplyBase,
	}, requestPublisher, log.With().Str("component", "dispatcher").Logger())
	if err != nil {
		log.Fatal().Err(err).Msg("failed to initialise dispatcher")
	}

	rtr, err := router.New(router.Config{
		ReplyTopicBase:    cfg.Destinations.ReplyBase,
		VerifiedTopicBase: cfg.Destinations.VerifiedBase,
		FailedTopicBase:   cfg.Destinations.FailedBase,
		SourceSystem:      cfg.Validation.SourceSystem,
	}, routedPublisher, failurePublisher, log.With().Str("component", "router").Logger(), time.Now)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to initialise router")
	}

	submitHandler, err := worker.NewSubmitHandler(cfg.Documents.BaseDir, docs, asm, dsp, cfg.Worker.Concurrency, log)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to initialise submit handler")
	}
	replyHandler, err := worker.NewReplyHandler(rtr, cfg.Worker.Concurrency, log)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to initialise reply handler")
	}

	errCh := make(chan error, 2)
	go func() {
		if err := submitCons.Consume(ctx, []string{cfg.Topics.LoanSubmit}, worker.KafkaHandler(submitHandler)); err != nil && !errors.Is(err, context.Canceled) {
			errCh <- err
		}
	}()
	go func() {
		if err := replyCons.Consume(ctx, []string{cfg.Topics.Reply}, worker.KafkaHandler(replyHandler)); err != nil && !errors.Is(err, context.Canceled) {
			errCh <- err
		}
	}()

	log.Info().
		Str("loan_submit_topic", cfg.Topics.LoanSubmit).
		Str("reply_topic", cfg.Topics.Reply).
		Msg("docverify worker started")

	select {
	case <-ctx.Done():
		log.Info().Msg("shutdown signal received")
	case err := <-errCh:
		if err != nil {
			log.Error().Err(err).Msg("consumer terminated with error")
		}
	}
}

func fail(stage string, err error) {
	logger := zerolog.New(os.Stdout).With().Timestamp().Logger()
	logger.Fatal().Err(err).Str("stage", stage).Msg("docverify worker init failed")
}
