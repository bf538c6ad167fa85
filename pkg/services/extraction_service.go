package services

import (
	"context"
	"fmt"
	"unicode/utf8"

	"go.uber.org/zap"

	"github.com/ekaya-inc/dpdp-engine/pkg/config"
	"github.com/ekaya-inc/dpdp-engine/pkg/extraction"
	"github.com/ekaya-inc/dpdp-engine/pkg/metrics"
	"github.com/ekaya-inc/dpdp-engine/pkg/models"
	"github.com/ekaya-inc/dpdp-engine/pkg/repositories"
)

// BuildInput is the raw text handed to the extraction pipeline.
type BuildInput struct {
	RulesText string
	// ActText is the companion Act. It is normalized and recorded but not segmented.
	ActText string
}

// BuildResult summarizes one run of the extraction pipeline.
type BuildResult struct {
	RulesSegmented     int `json:"rules_segmented"`
	RulesProcessed     int `json:"rules_processed"`
	Candidates         int `json:"candidates"`
	Inserted           int `json:"inserted"`
	Duplicates         int `json:"duplicates"`
	TooShort           int `json:"too_short"`
	ThresholdsFound    int `json:"thresholds_found"`
	ThresholdsInserted int `json:"thresholds_inserted"`
	ActCharacters      int `json:"act_characters"`
}

// VerifyReport describes the stored catalog after extraction.
type VerifyReport struct {
	TotalRequirements  int                         `json:"total_requirements"`
	// DuplicateEntries counts (identifier, text) pairs stored more than once.
	DuplicateEntries   int                         `json:"duplicate_entries"`
	// DuplicateTexts counts texts shared by several identifiers. Shared texts are
	// legitimate and reported for review only.
	DuplicateTexts     int                         `json:"duplicate_texts"`
	ByRule             map[int]int                 `json:"by_rule"`
	PenaltyCategories  int                         `json:"penalty_categories"`
	Thresholds         []*models.ScheduleThreshold `json:"thresholds"`
	ExpectedThresholds int                         `json:"expected_thresholds"`
}

// Passed reports whether no requirement entry is stored twice and every
// configured schedule threshold was stored.
func (v *VerifyReport) Passed() bool {
	return v.DuplicateEntries == 0 && len(v.Thresholds) == v.ExpectedThresholds
}

// ExtractionService runs the build-time pipeline from rules text to stored catalog.
type ExtractionService interface {
	// Build normalizes, segments and stores the rules inside one transaction.
	// Re-running Build over the same text inserts nothing.
	Build(ctx context.Context, in BuildInput) (*BuildResult, error)

	// Verify reports on the stored catalog.
	Verify(ctx context.Context) (*VerifyReport, error)
}

type extractionService struct {
	tx           TxRunner
	seeding      SeedingService
	store        RequirementStore
	requirements repositories.RequirementRepository
	penalties    repositories.PenaltyCategoryRepository
	schedules    repositories.ScheduleThresholdRepository
	rules        *config.ComplianceRules
	logger       *zap.Logger
}

// NewExtractionService creates a new extraction service.
func NewExtractionService(
	tx TxRunner,
	seeding SeedingService,
	store RequirementStore,
	requirements repositories.RequirementRepository,
	penalties repositories.PenaltyCategoryRepository,
	schedules repositories.ScheduleThresholdRepository,
	rules *config.ComplianceRules,
	logger *zap.Logger,
) ExtractionService {
	return &extractionService{
		tx:           tx,
		seeding:      seeding,
		store:        store,
		requirements: requirements,
		penalties:    penalties,
		schedules:    schedules,
		rules:        rules,
		logger:       logger.Named("extraction"),
	}
}

// candidate is a requirement proposed by the text pipeline before persistence.
type candidate struct {
	ruleID models.RuleIdentifier
	text   string
}

func (s *extractionService) Build(ctx context.Context, in BuildInput) (*BuildResult, error) {
	text := extraction.Normalize(in.RulesText)
	segmented := extraction.SegmentRules(text, s.rules.Rules.MaxRule)

	result := &BuildResult{
		RulesSegmented: len(segmented),
		ActCharacters:  utf8.RuneCountInString(extraction.Normalize(in.ActText)),
	}

	s.logger.Info("Segmented rules text",
		zap.Int("rules", len(segmented)),
		zap.Int("characters", utf8.RuneCountInString(text)))

	thresholds := extraction.ExtractThresholds(text,
		s.rules.Schedule.StartHeading,
		s.rules.Schedule.EndHeading,
		s.thresholdVocabulary())
	result.ThresholdsFound = len(thresholds)

	err := s.tx.WithTx(ctx, func(ctx context.Context) error {
		s.store.ResetCategories()
		if _, err := s.seeding.SeedPenaltyCategories(ctx); err != nil {
			return err
		}

		for _, rule := range segmented {
			if !s.rules.IsExtractedRule(rule.Number) {
				continue
			}
			result.RulesProcessed++

			obligationType := s.rules.ObligationTypeForRule(rule.Number)
			significant := s.rules.IsSignificantEntityRule(rule.Number)

			for _, c := range s.candidates(rule, result) {
				result.Candidates++
				inserted, err := s.store.Insert(ctx, c.ruleID, c.text, obligationType, significant)
				if err != nil {
					return fmt.Errorf("store %s: %w", c.ruleID, err)
				}
				if inserted {
					result.Inserted++
				} else {
					result.Duplicates++
				}
			}
		}

		for _, th := range thresholds {
			inserted, err := s.schedules.InsertIfAbsent(ctx, &models.ScheduleThreshold{
				ScheduleName:   s.rules.Schedule.Name,
				EntityClass:    th.EntityClass,
				ThresholdUsers: th.ThresholdUsers,
				RetentionDays:  th.RetentionDays,
			})
			if err != nil {
				return err
			}
			if inserted {
				result.ThresholdsInserted++
			}
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("extraction build failed: %w", err)
	}

	metrics.RequirementsInserted.Add(float64(result.Inserted))
	metrics.RequirementsSkipped.Add(float64(result.Duplicates + result.TooShort))

	s.logger.Info("Extraction complete",
		zap.Int("rules_processed", result.RulesProcessed),
		zap.Int("inserted", result.Inserted),
		zap.Int("duplicates", result.Duplicates),
		zap.Int("too_short", result.TooShort),
		zap.Int("thresholds_inserted", result.ThresholdsInserted))

	return result, nil
}

// candidates turns one rule into requirement candidates: one per sub-clause, or the
// whole rule when it has no clause markers. Text at or under the minimum length is
// counted on result and dropped.
func (s *extractionService) candidates(rule extraction.Rule, result *BuildResult) []candidate {
	limits := s.rules.Extraction
	content := extraction.StripIllustrations(rule.Content)
	clauses := extraction.ExtractSubClausesWithMin(content, limits.MinSubClauseLength)

	var out []candidate
	if len(clauses) == 0 {
		whole := extraction.CollapseWhitespace(content)
		if utf8.RuneCountInString(whole) <= limits.MinRequirementLength {
			result.TooShort++
			return nil
		}
		return append(out, candidate{
			ruleID: models.NewRuleIdentifier(rule.Number),
			text:   truncateRunes(whole, limits.MaxRuleContentLength),
		})
	}

	for _, c := range clauses {
		if utf8.RuneCountInString(c.Text) <= limits.MinRequirementLength {
			result.TooShort++
			continue
		}
		out = append(out, candidate{
			ruleID: models.NewRuleIdentifier(rule.Number, c.Path()...),
			text:   c.Text,
		})
	}
	return out
}

func (s *extractionService) thresholdVocabulary() []extraction.ThresholdTerm {
	terms := make([]extraction.ThresholdTerm, 0, len(s.rules.Schedule.Vocabulary))
	for _, v := range s.rules.Schedule.Vocabulary {
		terms = append(terms, extraction.ThresholdTerm{
			EntityClass:     v.EntityClass,
			Phrase:          v.Phrase,
			ThresholdPhrase: v.ThresholdPhrase,
			ThresholdUsers:  v.ThresholdUsers,
			RetentionDays:   v.RetentionDays,
		})
	}
	return terms
}

func (s *extractionService) Verify(ctx context.Context) (*VerifyReport, error) {
	total, err := s.requirements.Count(ctx)
	if err != nil {
		return nil, err
	}
	entries, err := s.requirements.CountDuplicateEntries(ctx)
	if err != nil {
		return nil, err
	}
	dups, err := s.requirements.CountDuplicateTexts(ctx)
	if err != nil {
		return nil, err
	}
	byRule, err := s.requirements.CountByRule(ctx)
	if err != nil {
		return nil, err
	}
	categories, err := s.penalties.List(ctx)
	if err != nil {
		return nil, err
	}
	thresholds, err := s.schedules.List(ctx)
	if err != nil {
		return nil, err
	}

	return &VerifyReport{
		TotalRequirements:  total,
		DuplicateEntries:   entries,
		DuplicateTexts:     dups,
		ByRule:             byRule,
		PenaltyCategories:  len(categories),
		Thresholds:         thresholds,
		ExpectedThresholds: len(s.rules.Schedule.Vocabulary),
	}, nil
}

// truncateRunes cuts s to max runes and marks the cut with "...".
func truncateRunes(s string, max int) string {
	if max <= 0 || utf8.RuneCountInString(s) <= max {
		return s
	}
	return string([]rune(s)[:max]) + "..."
}
