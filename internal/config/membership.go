package config

import (
	"errors"
	"strings"
	"sync/atomic"

	"github.com/fsnotify/fsnotify"
	"github.com/spf13/viper"
	"go.uber.org/zap"
)

// MembershipRules tunes id generation and listing for branches and contractors.
type MembershipRules struct {
	ContractorSuffixLength int `mapstructure:"contractorSuffixLength"`
	BranchProbeLimit       int `mapstructure:"branchProbeLimit"`
	PageSize               int `mapstructure:"pageSize"`
}

func DefaultMembershipRules() MembershipRules {
	return MembershipRules{
		ContractorSuffixLength: 5,
		BranchProbeLimit:       50,
		PageSize:               10,
	}
}

type MembershipRulesHolder struct {
	current atomic.Value // holds MembershipRules
}

// StaticMembershipRules returns a holder that never reloads.
func StaticMembershipRules(rules MembershipRules) *MembershipRulesHolder {
	holder := &MembershipRulesHolder{}
	holder.current.Store(rules)
	return holder
}

func NewMembershipRulesHolder(log *zap.Logger) (*MembershipRulesHolder, error) {
	v := viper.New()

	v.SetConfigName("membership")
	v.SetConfigType("yml")
	v.AddConfigPath("/etc/branchops")
	v.AddConfigPath(".")

	v.SetEnvPrefix("BRANCHOPS")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	defaults := DefaultMembershipRules()
	v.SetDefault("membership.contractorSuffixLength", defaults.ContractorSuffixLength)
	v.SetDefault("membership.branchProbeLimit", defaults.BranchProbeLimit)
	v.SetDefault("membership.pageSize", defaults.PageSize)

	fileLoaded := true
	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, err
		}
		fileLoaded = false
	}

	var rules MembershipRules
	if err := v.UnmarshalKey("membership", &rules); err != nil {
		return nil, err
	}
	if err := validateMembershipRules(rules); err != nil {
		return nil, err
	}

	holder := StaticMembershipRules(rules)
	log = log.Named("config.membership")

	if fileLoaded {
		v.WatchConfig()
		v.OnConfigChange(func(e fsnotify.Event) {
			var updated MembershipRules
			if err := v.UnmarshalKey("membership", &updated); err != nil {
				log.Warn("reload failed", zap.Error(err))
				return
			}
			if err := validateMembershipRules(updated); err != nil {
				log.Warn("invalid membership rules ignored", zap.Error(err))
				return
			}
			holder.current.Store(updated)
			log.Info("membership rules reloaded", zap.String("file", e.Name))
		})
	}

	return holder, nil
}

func (h *MembershipRulesHolder) Get() MembershipRules {
	if h == nil {
		return DefaultMembershipRules()
	}
	return h.current.Load().(MembershipRules)
}

func validateMembershipRules(rules MembershipRules) error {
	if rules.ContractorSuffixLength < 3 || rules.ContractorSuffixLength > 12 {
		return errors.New("membership.contractorSuffixLength must be between 3 and 12")
	}
	if rules.BranchProbeLimit < 1 {
		return errors.New("membership.branchProbeLimit must be positive")
	}
	if rules.PageSize < 1 || rules.PageSize > 250 {
		return errors.New("membership.pageSize must be between 1 and 250")
	}
	return nil
}
