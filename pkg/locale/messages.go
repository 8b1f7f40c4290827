package locale

// Message IDs of the embedded catalog.
const (
	TextLocalizedWithoutLanguageSelection = "text_localized_without_language_selection"
	TextEmpty                             = "text_empty"
	TextMissingLanguages                  = "text_missing_languages"

	ContentTextName = "content_text_name"

	HumanOperatorAdminChatNotSelected = "human_operator_admin_chat_not_selected"
	HumanOperatorForwardedToAdminName = "human_operator_forwarded_to_admin_ok_name"
	HumanOperatorThrottlingName       = "human_operator_throttling_name"

	MenuTextName      = "menu_text_name"
	MenuBackLabelName = "menu_back_label_name"
	MenuNoItems       = "menu_no_items"
	MenuItemLabelName = "menu_item_label_name"
	MenuItemNoTarget  = "menu_item_no_target"

	SubmenuTextName      = "submenu_text_name"
	SubmenuBackLabelName = "submenu_back_label_name"
	SubmenuNoItems       = "submenu_no_items"

	LanguageSelectNoLanguages         = "language_select_no_languages"
	LanguageSelectNoDefault           = "language_select_no_default"
	LanguageSelectDefaultNotSupported = "language_select_default_not_supported"
	LanguageSelectPromptName          = "language_select_prompt_name"

	FormNoMembers                  = "form_no_members"
	FormFieldPromptName            = "form_field_prompt_name"
	FormFieldNameEmpty             = "form_field_name_empty"
	FormFieldNoOptions             = "form_field_no_options"
	FormOptionLabelName            = "form_option_label_name"
	FormBranchEmpty                = "form_branch_empty"
	FormBranchNoCondition          = "form_branch_no_condition"
	FormBranchesWithoutSwitch      = "form_branches_without_switch"
	FormBranchesUnknownCondition   = "form_branches_unknown_condition"
	FormBranchesDuplicateCondition = "form_branches_duplicate_condition"
	FormNoResultsExport            = "form_no_results_export"
	FormResultsChatNotSelected     = "form_results_chat_not_selected"

	// FormMessagePrefix + a FormMessages key names that message.
	FormMessagePrefix = "form_message_"

	EntrypointCommandEmpty   = "entrypoint_command_empty"
	EntrypointCommandInvalid = "entrypoint_command_invalid"
	EntrypointRegexInvalid   = "entrypoint_regex_invalid"

	FlowDuplicateNodeID        = "flow_duplicate_node_id"
	FlowDuplicateFormName      = "flow_duplicate_form_name"
	FlowMultipleLanguageSelect = "flow_multiple_language_select"
	FlowUnknownVariant         = "flow_unknown_variant"
	FlowUnknownFormMember      = "flow_unknown_form_member"
)
